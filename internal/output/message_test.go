package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/tyche/internal/output"
)

func TestNotifier_Plain(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	n := output.NewNotifier(&buf, false)

	n.Infof("drew %d values", 3)
	n.Warnf("seed derived from %s", "time")
	n.Success("saved")

	assert.Equal(t, "ℹ️  drew 3 values\n⚠️  seed derived from time\n✅ saved\n", buf.String())
}

func TestNotifier_Color(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	n := output.NewNotifier(&buf, true)

	n.Warn("insecure")
	n.Successf("%s", "ok")
	n.Info("plain")

	expected := "\033[33m⚠️  insecure\033[0m\n" +
		"\033[32m✅ ok\033[0m\n" +
		"ℹ️  plain\n"
	assert.Equal(t, expected, buf.String())
}
