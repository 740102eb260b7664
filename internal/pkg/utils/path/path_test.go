package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFolder(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "  \t ", want: ""},
		{name: "only separators", in: "///", want: ""},
		{name: "mixed separators", in: `/a//b\c/`, want: "a/b/c"},
		{name: "leading and trailing", in: "/products/2024/", want: "products/2024"},
		{name: "backslashes", in: `products\2024\summer`, want: "products/2024/summer"},
		{name: "doubled backslashes", in: `\\products\\\\2024`, want: "products/2024"},
		{name: "segment whitespace", in: " products / 2024 ", want: "products/2024"},
		{name: "blank segment", in: "/ /a", want: "a"},
		{name: "special characters kept", in: "my-folder_2024@special", want: "my-folder_2024@special"},
		{name: "dotted names kept", in: "v1.2/.hidden", want: "v1.2/.hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeFolder(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := NormalizeFolder(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "normalization must be idempotent")

			assert.NotContains(t, got, `\`)
			assert.NotContains(t, got, "//")
			if got != "" {
				assert.NotEqual(t, byte('/'), got[0])
				assert.NotEqual(t, byte('/'), got[len(got)-1])
			}
		})
	}
}

func TestNormalizeFolder_RejectsTraversal(t *testing.T) {
	for _, in := range []string{"..", "../etc", "a/../../b", `a\..\b`, "./a", "a/./b", "a/...", " .. /x"} {
		t.Run(in, func(t *testing.T) {
			_, err := NormalizeFolder(in)
			assert.ErrorIs(t, err, ErrPathTraversal)
		})
	}

	_, err := NormalizeFolder("a/b\x00c")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestValidatePath(t *testing.T) {
	assert.ErrorIs(t, ValidatePath(""), ErrEmptyPath)
	assert.NoError(t, ValidatePath("/"))
	assert.NoError(t, ValidatePath("images/small/products/abc.png"))
	assert.NoError(t, ValidatePath("/images//small/abc.png"))
	assert.ErrorIs(t, ValidatePath("images/../../etc/passwd"), ErrPathTraversal)
	assert.ErrorIs(t, ValidatePath("images/a\x00.png"), ErrInvalidPath)
}
