package main_test

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMainExitsOnBadBucketURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", ".")
	cmd.Env = append(os.Environ(),
		"SEED_CATALOG=false",
		"BUCKET_URL=badscheme://nowhere",
	)

	err := cmd.Run()
	assert.Error(t, err)
	assert.NotEqual(t, context.DeadlineExceeded, ctx.Err())
}
