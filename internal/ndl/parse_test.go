package ndl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResponseXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
     xmlns:dc="http://purl.org/dc/elements/1.1/"
     xmlns:dcndl="http://ndl.go.jp/dcndl/terms/"
     xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>NDL Search Results</title>
    <item>
      <title>テスト作品 第12巻</title>
      <dc:creator>テスト著者</dc:creator>
      <dc:publisher>テスト出版社</dc:publisher>
      <dc:identifier>urn:isbn:9784088820000</dc:identifier>
      <enclosure url="https://example.org/covers/9784088820000.jpg" type="image/jpeg" length="0"/>
    </item>
    <item>
      <title>テスト作品 第13巻</title>
      <dc:creator>テスト著者</dc:creator>
      <dc:publisher>テスト出版社</dc:publisher>
      <dc:identifier>ISBN978-4-08-882001-7</dc:identifier>
      <media:thumbnail>https://example.org/thumbs/9784088820017.jpg</media:thumbnail>
    </item>
    <item>
      <dc:creator>タイトルなし</dc:creator>
      <dc:identifier>urn:isbn:9784088820099</dc:identifier>
    </item>
    <item>
      <title>関係ない別作品</title>
      <link>https://example.org/records/42</link>
    </item>
  </channel>
</rss>`

func TestParseSearchCandidates(t *testing.T) {
	candidates, err := parseSearchCandidates(searchResponseXML)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	first := candidates[0]
	assert.Equal(t, "テスト作品", first.Title)
	assert.Equal(t, "テスト著者", first.Author)
	assert.Equal(t, "テスト出版社", first.Publisher)
	assert.Equal(t, "9784088820000", first.ISBN)
	require.NotNil(t, first.VolumeNumber)
	assert.Equal(t, 12, *first.VolumeNumber)
	assert.Equal(t, "https://example.org/covers/9784088820000.jpg", first.CoverURL)
	assert.Equal(t, OwnedUnknown, first.Owned)

	second := candidates[1]
	assert.Equal(t, "9784088820017", second.ISBN)
	require.NotNil(t, second.VolumeNumber)
	assert.Equal(t, 13, *second.VolumeNumber)
	assert.Equal(t, "https://example.org/thumbs/9784088820017.jpg", second.CoverURL)

	third := candidates[2]
	assert.Equal(t, "関係ない別作品", third.Title)
	assert.Empty(t, third.ISBN)
	assert.Nil(t, third.VolumeNumber)
	assert.Empty(t, third.CoverURL)
}

func TestParseSearchCandidatesEmptyChannel(t *testing.T) {
	candidates, err := parseSearchCandidates(`<rss version="2.0"><channel></channel></rss>`)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestParseSearchCandidatesNoChannel(t *testing.T) {
	candidates, err := parseSearchCandidates(`<rss version="2.0"></rss>`)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestParseSearchCandidatesInvalidXML(t *testing.T) {
	_, err := parseSearchCandidates(`<rss><channel><item>`)

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 502, clientErr.StatusCode)
	assert.Equal(t, CodeBadGateway, clientErr.Code)
	assert.Equal(t, "NDL API returned invalid XML", clientErr.Message)
	assert.True(t, clientErr.ExternalFailure())
}

func TestParseVolumeMetadata(t *testing.T) {
	meta, err := parseVolumeMetadata(searchResponseXML, "9784088820000")
	require.NoError(t, err)

	assert.Equal(t, "テスト作品", meta.Title)
	assert.Equal(t, "テスト著者", meta.Author)
	assert.Equal(t, "テスト出版社", meta.Publisher)
	require.NotNil(t, meta.VolumeNumber)
	assert.Equal(t, 12, *meta.VolumeNumber)
	assert.Equal(t, "https://example.org/covers/9784088820000.jpg", meta.CoverURL)
}

func TestParseVolumeMetadataExplicitVolumeWins(t *testing.T) {
	body := `<rss version="2.0"
		xmlns:dc="http://purl.org/dc/elements/1.1/"
		xmlns:dcndl="http://ndl.go.jp/dcndl/terms/">
	<channel>
	  <item>
	    <title>テスト作品 第12巻</title>
	    <dc:creator>テスト著者</dc:creator>
	    <dc:publisher>テスト出版社</dc:publisher>
	    <dcndl:volume>第3巻</dcndl:volume>
	    <enclosure url="https://example.com/covers/test-12.jpg" type="image/jpeg" length="0"/>
	  </item>
	</channel>
	</rss>`

	meta, err := parseVolumeMetadata(body, "9780000000123")
	require.NoError(t, err)
	assert.Equal(t, "テスト作品", meta.Title)
	require.NotNil(t, meta.VolumeNumber)
	assert.Equal(t, 3, *meta.VolumeNumber)
	assert.Equal(t, "https://example.com/covers/test-12.jpg", meta.CoverURL)
}

func TestParseVolumeMetadataNotFound(t *testing.T) {
	_, err := parseVolumeMetadata(`<rss version="2.0"><channel></channel></rss>`, "9784999999990")

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 404, clientErr.StatusCode)
	assert.Equal(t, CodeItemNotFound, clientErr.Code)
	assert.False(t, clientErr.ExternalFailure())
	assert.Equal(t, "9784999999990", clientErr.Details["isbn"])
	assert.Equal(t, "NDL Search", clientErr.Details["upstream"])
}

func TestParseVolumeMetadataTitlelessItem(t *testing.T) {
	body := `<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
	<channel>
	  <item>
	    <dc:creator>テスト著者</dc:creator>
	    <dc:identifier>urn:isbn:9784088820099</dc:identifier>
	  </item>
	</channel>
	</rss>`

	_, err := parseVolumeMetadata(body, "9784088820099")

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 502, clientErr.StatusCode)
	assert.Equal(t, "NDL API returned invalid title", clientErr.Message)
}

func TestExtractCoverURLLinkHeuristics(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "thumbnail rel link",
			body: `<rss><channel><item><title>t 1</title><link rel="thumbnail" href="https://example.org/a.jpg"/></item></channel></rss>`,
			want: "https://example.org/a.jpg",
		},
		{
			name: "image media type link",
			body: `<rss><channel><item><title>t 1</title><link type="image/png" url="https://example.org/b.png"/></item></channel></rss>`,
			want: "https://example.org/b.png",
		},
		{
			name: "thumbnail path marker",
			body: `<rss><channel><item><title>t 1</title><link href="https://example.org/thumbnail/x"/></item></channel></rss>`,
			want: "https://example.org/thumbnail/x",
		},
		{
			name: "plain record link is not a cover",
			body: `<rss><channel><item><title>t 1</title><link href="https://example.org/records/42"/></item></channel></rss>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := parseSearchCandidates(tt.body)
			require.NoError(t, err)
			require.Len(t, candidates, 1)
			assert.Equal(t, tt.want, candidates[0].CoverURL)
		})
	}
}
