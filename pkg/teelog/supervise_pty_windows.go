// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: ptys are not available on Windows, supervised children
// always use pipes there.

package teelog

import (
	"context"
	"os/exec"
)

func runPTY(_ context.Context, _ *exec.Cmd, _ *teeStream) (waitErr, err error) {
	return nil, errPTYUnsupported
}
