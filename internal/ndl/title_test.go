package ndl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTitleAndVolumeNumber(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantTitle  string
		wantNumber *int
	}{
		{name: "dai kan marker", input: "テスト作品 第12巻", wantTitle: "テスト作品", wantNumber: intPtr(12)},
		{name: "dai kan no space", input: "テスト作品第12巻", wantTitle: "テスト作品", wantNumber: intPtr(12)},
		{name: "bare kan", input: "テスト作品 3巻", wantTitle: "テスト作品", wantNumber: intPtr(3)},
		{name: "vol dot", input: "One Piece Vol. 45", wantTitle: "One Piece", wantNumber: intPtr(45)},
		{name: "vol no dot", input: "One Piece vol 45", wantTitle: "One Piece", wantNumber: intPtr(45)},
		{name: "trailing number", input: "ナルト 7", wantTitle: "ナルト", wantNumber: intPtr(7)},
		{name: "full width number", input: "テスト作品　第１２巻", wantTitle: "テスト作品", wantNumber: intPtr(12)},
		{name: "no marker", input: "よつばと!", wantTitle: "よつばと!", wantNumber: nil},
		{name: "number mid title", input: "20世紀少年", wantTitle: "20世紀少年", wantNumber: nil},
		{name: "only a number", input: "12", wantTitle: "12", wantNumber: nil},
		{name: "whitespace only", input: " 　 ", wantTitle: "", wantNumber: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, number := splitTitleAndVolumeNumber(tt.input)
			assert.Equal(t, tt.wantTitle, title)
			if tt.wantNumber == nil {
				assert.Nil(t, number)
			} else {
				require.NotNil(t, number)
				assert.Equal(t, *tt.wantNumber, *number)
			}
		})
	}
}

func intPtr(n int) *int { return &n }
