package blob

import (
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NotFound"})))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(fmt.Errorf("dial tcp: refused")))
}

func TestS3Deps_ObjectKey(t *testing.T) {
	u := &S3Deps{prefix: "app/storage"}
	k, err := u.objectKey("/images/small/a.png")
	assert.NoError(t, err)
	assert.Equal(t, "app/storage/images/small/a.png", k)

	u = &S3Deps{}
	k, err = u.objectKey("pdf/a.pdf")
	assert.NoError(t, err)
	assert.Equal(t, "pdf/a.pdf", k)

	_, err = u.objectKey("../a.pdf")
	assert.Error(t, err)
}
