package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// CallerEnv set to "machine" makes commands emit JSON unless --json=false
// is given explicitly.
const CallerEnv = "TREELABEL_CALLER"

// IsMachineCaller reports whether treelabel runs under a script or agent
// that asked for machine-readable output.
func IsMachineCaller() bool {
	return os.Getenv(CallerEnv) == "machine"
}

// ShouldOutputJSON determines if a command should output JSON based on flags
// and the caller environment
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return IsMachineCaller()
	}

	// Explicit local --json wins either way
	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("json")
		return v
	}

	if f := cmd.Root().PersistentFlags().Lookup("json"); f != nil && f.Changed {
		v, _ := cmd.Root().PersistentFlags().GetBool("json")
		return v
	}

	return IsMachineCaller()
}

// MarshalJSON marshals JSON compactly for machine callers and indented for
// people.
func MarshalJSON(v interface{}) ([]byte, error) {
	if IsMachineCaller() {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// OutputJSON writes v to w followed by a newline.
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
