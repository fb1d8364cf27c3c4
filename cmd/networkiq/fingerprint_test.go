package main

import (
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/networkiq/internal/fingerprint"
	"github.com/jonathan/networkiq/internal/types"
)

func TestFingerprintCommand_DefaultCriteria(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "fingerprint")
	output, err := cmd.Output()
	require.NoError(t, err, "output: %s", output)

	expected := fingerprint.Fingerprint(types.DefaultElements())
	assert.Equal(t, expected, strings.TrimSpace(string(output)))
}

func TestFingerprintCommand_OrderIndependent(t *testing.T) {
	binaryPath := getBinaryPath(t)

	forward := writeTempJSON(t, "forward.json", `{
		"elements": [
			{"category": "education", "value": "stanford university", "weight": 30},
			{"category": "military", "value": "navy", "weight": 30}
		]
	}`)
	reversed := writeTempJSON(t, "reversed.json", `{
		"elements": [
			{"category": "military", "value": "navy", "weight": 30},
			{"category": "education", "value": "stanford university", "weight": 30}
		]
	}`)

	first, err := exec.Command(binaryPath, "fingerprint", "--criteria", forward).Output()
	require.NoError(t, err)
	second, err := exec.Command(binaryPath, "fingerprint", "--criteria", reversed).Output()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}
