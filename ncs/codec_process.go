package ncs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// ProcessCodec shells out to an external decompressor binary, for sites
// that have the archive's real proprietary tool installed and want
// bit-exact decompression rather than FlateCodec's open-source stand-in.
// It is registered under CodecExternalProcess via RegisterCodec, never by
// default, since this package must not assume the binary exists.
type ProcessCodec struct {
	// Path is the decompressor executable. It is invoked once per call as
	// `Path -d` (decompress) or `Path -c` (compress), reading stdin and
	// writing stdout.
	Path    string
	Timeout time.Duration
}

func NewProcessCodec(path string, timeout time.Duration) ProcessCodec {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return ProcessCodec{Path: path, Timeout: timeout}
}

func (c ProcessCodec) Name() string { return "external-process:" + c.Path }

func (c ProcessCodec) Compress(data []byte) ([]byte, error) {
	return c.run(data, "-c")
}

func (c ProcessCodec) Decompress(data []byte) ([]byte, error) {
	return c.run(data, "-d")
}

func (c ProcessCodec) run(data []byte, flag string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Path, flag)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ncs: external codec %s failed: %w (stderr: %s)", c.Path, err, stderr.String())
	}
	return stdout.Bytes(), nil
}
