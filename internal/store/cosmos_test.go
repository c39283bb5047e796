package store

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
)

// DeleteSensor treats a 404 on an individual delete as already done, so a
// rerun after a partial failure converges instead of aborting.
func TestIsNotFound(t *testing.T) {
	notFound := &azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "NotFound"}
	assert.True(t, isNotFound(notFound))
	assert.True(t, isNotFound(fmt.Errorf("deleting item abc: %w", notFound)))

	conflict := &azcore.ResponseError{StatusCode: http.StatusConflict}
	assert.False(t, isNotFound(conflict))
	assert.False(t, isNotFound(errors.New("connection refused")))
	assert.False(t, isNotFound(nil))
}
