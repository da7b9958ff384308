package output

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"keys": 2}))
	assert.Equal(t, "{\n  \"keys\": 2\n}\n", buf.String())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tw := Table(&buf)
	fmt.Fprintln(tw, "METHOD\tURL")
	fmt.Fprintln(tw, "DELETE\t/x")
	require.NoError(t, tw.Flush())
	assert.Equal(t, "METHOD  URL\nDELETE  /x\n", buf.String())
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	Warn(&buf, "%d entries skipped", 3)
	assert.Equal(t, "Warning: 3 entries skipped\n", buf.String())
}
