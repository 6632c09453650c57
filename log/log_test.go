package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_writesJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, InfoLevel)
	l.Debug("hidden")
	l.Info("visible", String("key", "value"))
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"visible"`)
	assert.Contains(t, out, `"key":"value"`)
}

func TestWithFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	base := New(buf, InfoLevel)
	l, err := base.WithFilter("info+:* debug+:processing")
	assert.NoError(t, err)

	l.Named("processing").Debug("from processing")
	l.Named("api").Debug("from api")
	out := buf.String()
	assert.Contains(t, out, "from processing")
	assert.NotContains(t, out, "from api")
}

func TestGetFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, DebugLevel).Named("ctx")
	ctx := AddToContext(context.Background(), l)
	GetFromContext(ctx).Info("hello")
	assert.True(t, strings.Contains(buf.String(), `"logger":"ctx"`))

	assert.Equal(t, Default(), GetFromContext(context.Background()))
}
