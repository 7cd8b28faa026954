package ndl

import (
	"encoding/xml"
	"strings"

	"mangashelf/internal/textnorm"
)

// xmlNode is a generic XML tree node. Element and attribute lookups compare
// local names only, so dc:title, dcndl:title, and a bare title all resolve
// the same way regardless of how the upstream prefixes its namespaces.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

func (n *xmlNode) firstChild(local string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

func (n *xmlNode) childrenNamed(local string) []*xmlNode {
	var found []*xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			found = append(found, &n.Children[i])
		}
	}
	return found
}

func (n *xmlNode) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// firstNonEmptyText returns the first non-empty text content among children
// matching the given local names, tried in order.
func firstNonEmptyText(item *xmlNode, locals ...string) string {
	for _, local := range locals {
		for _, child := range item.childrenNamed(local) {
			if text := strings.TrimSpace(child.Text); text != "" {
				return text
			}
		}
	}
	return ""
}

// parseChannelItems decodes one OpenSearch/RSS response body and returns the
// channel's item nodes. A body that does not parse as XML is an upstream
// fault; a parseable body with no channel or no items is just empty.
func parseChannelItems(body string) ([]*xmlNode, error) {
	var root xmlNode
	if err := xml.Unmarshal([]byte(body), &root); err != nil {
		return nil, newInvalidXMLError()
	}
	channel := root.firstChild("channel")
	if channel == nil {
		return nil, nil
	}
	return channel.childrenNamed("item"), nil
}

// extractItemISBN scans an item's identifier, guid, and link children in
// that order for the first embedded ISBN-13. Empty when none carries one.
func extractItemISBN(item *xmlNode) string {
	for _, local := range []string{"identifier", "guid", "link"} {
		for _, child := range item.childrenNamed(local) {
			if isbn := textnorm.ExtractISBN13(child.Text); isbn != "" {
				return isbn
			}
		}
	}
	return ""
}

func coverURLIndicators(value string) bool {
	lowered := strings.ToLower(value)
	return strings.Contains(lowered, "thumbnail") ||
		strings.Contains(lowered, "/thumb") ||
		strings.Contains(lowered, "cover")
}

// extractCoverURL resolves a cover image URL by priority: an enclosure's url
// attribute, then a link that looks like a thumbnail/cover reference, then a
// thumbnail or icon child's text.
func extractCoverURL(item *xmlNode) string {
	for _, enclosure := range item.childrenNamed("enclosure") {
		if u := enclosure.attr("url"); u != "" {
			return u
		}
	}
	for _, link := range item.childrenNamed("link") {
		target := link.attr("href")
		if target == "" {
			target = link.attr("url")
		}
		if target == "" {
			continue
		}
		rel := strings.ToLower(link.attr("rel"))
		mediaType := strings.ToLower(link.attr("type"))
		if strings.Contains(rel, "thumbnail") || strings.Contains(rel, "icon") ||
			strings.HasPrefix(mediaType, "image/") || coverURLIndicators(target) {
			return target
		}
	}
	for _, local := range []string{"thumbnail", "icon"} {
		for _, child := range item.childrenNamed(local) {
			if text := strings.TrimSpace(child.Text); text != "" {
				return text
			}
		}
	}
	return ""
}

// extractItemFields pulls the shared metadata fields out of one item node.
// ok is false when the item has no usable title.
func extractItemFields(item *xmlNode) (title string, author string, publisher string, volumeNumber *int, coverURL string, ok bool) {
	rawTitle := firstNonEmptyText(item, "title")
	if rawTitle == "" {
		return "", "", "", nil, "", false
	}

	seriesTitle, numberFromTitle := splitTitleAndVolumeNumber(rawTitle)
	if seriesTitle == "" {
		return "", "", "", nil, "", false
	}

	volumeNumber = numberFromTitle
	if volumeText := firstNonEmptyText(item, "volume"); volumeText != "" {
		if n, found := textnorm.LeadingInteger(volumeText); found {
			volumeNumber = &n
		}
	}

	author = textnorm.Text(firstNonEmptyText(item, "creator", "author"))
	publisher = textnorm.Text(firstNonEmptyText(item, "publisher"))
	coverURL = extractCoverURL(item)
	return seriesTitle, author, publisher, volumeNumber, coverURL, true
}

// parseSearchCandidates extracts zero or more candidates from a search
// response. Items without a title are skipped rather than failing the batch.
func parseSearchCandidates(body string) ([]SearchCandidate, error) {
	items, err := parseChannelItems(body)
	if err != nil {
		return nil, err
	}

	candidates := make([]SearchCandidate, 0, len(items))
	for _, item := range items {
		title, author, publisher, volumeNumber, coverURL, ok := extractItemFields(item)
		if !ok {
			continue
		}
		candidates = append(candidates, SearchCandidate{
			Title:        title,
			Author:       author,
			Publisher:    publisher,
			ISBN:         extractItemISBN(item),
			VolumeNumber: volumeNumber,
			CoverURL:     coverURL,
			Owned:        OwnedUnknown,
		})
	}
	return candidates, nil
}

// parseVolumeMetadata extracts the registration metadata for one queried
// ISBN. The query already constrained the upstream to that ISBN, so the
// first item is authoritative; the isbn argument only contextualizes the
// not-found error.
func parseVolumeMetadata(body string, isbn string) (VolumeMetadata, error) {
	items, err := parseChannelItems(body)
	if err != nil {
		return VolumeMetadata{}, err
	}
	if len(items) == 0 {
		return VolumeMetadata{}, newItemNotFoundError(isbn)
	}

	title, author, publisher, volumeNumber, coverURL, ok := extractItemFields(items[0])
	if !ok {
		return VolumeMetadata{}, newInvalidTitleError()
	}

	return VolumeMetadata{
		Title:        title,
		Author:       author,
		Publisher:    publisher,
		VolumeNumber: volumeNumber,
		CoverURL:     coverURL,
	}, nil
}
