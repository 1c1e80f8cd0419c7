package cmds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Create_RejectsShortPassword(t *testing.T) {
	createUsername = "short-pass-admin"
	createPassword = "hunter2"

	createCmd.SetContext(context.Background())

	err := createCmd.RunE(createCmd, nil)
	require.ErrorContains(t, err, "password must be at least 8 characters")
}
