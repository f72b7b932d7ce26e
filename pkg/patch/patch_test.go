// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package patch

import (
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testDiff = `diff --git a/server/main.go b/server/main.go
index 3b18e51..a6b2f0c 100644
--- a/server/main.go
+++ b/server/main.go
@@ -1,3 +1,4 @@
 package main
 
-func main() {}
+func main() {
+}
diff --git a/docs/NEW.md b/docs/NEW.md
new file mode 100644
--- /dev/null
+++ b/docs/NEW.md
@@ -0,0 +1,2 @@
+# New
+doc
diff --git a/old.txt b/old.txt
deleted file mode 100644
--- a/old.txt
+++ /dev/null
@@ -1 +0,0 @@
-gone`

func TestParse(t *testing.T) {
	p, err := Parse(testDiff)
	require.NoError(t, err)
	require.Equal(t, []string{"server/main.go", "docs/NEW.md", "old.txt"}, p.FileNames())

	require.Equal(t, 2, p.Files[0].Added)
	require.Equal(t, 1, p.Files[0].Deleted)
	require.False(t, p.Files[0].New)

	require.True(t, p.Files[1].New)
	require.Equal(t, 2, p.Files[1].Added)

	require.True(t, p.Files[2].Removed)
	require.Equal(t, 1, p.Files[2].Deleted)

	// The missing trailing newline is added back
	require.Equal(t, testDiff+"\n", p.Text)
}

func TestParseEmpty(t *testing.T) {
	for _, s := range []string{"", "  \n\t"} {
		_, err := Parse(s)
		require.True(t, errors.Is(err, ErrEmptyPatch))
	}
}

func TestParseNotADiff(t *testing.T) {
	_, err := Parse("I could not find a fix for this issue.\n")
	require.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	p, err := Parse(testDiff)
	require.NoError(t, err)
	path, err := p.WriteFile(t.TempDir())
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, p.Text, string(data))
}
