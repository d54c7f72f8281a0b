// Package patch reads changed files from a unified diff.
package patch

import (
	"io"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/zerr"
)

const devNull = "/dev/null"

// Reader implements ports.PatchReader.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ChangedFiles parses a unified or git-style diff and returns every file it
// touches. Renames contribute both names; /dev/null is skipped.
func (p *Reader) ChangedFiles(r io.Reader) (domain.ChangeSet, error) {
	fileDiffs, err := diff.NewMultiFileDiffReader(r).ReadAllFiles()
	if err != nil {
		wrapped := zerr.Wrap(domain.ErrChangeResolution, "failed to parse patch")
		return domain.ChangeSet{}, zerr.With(wrapped, "error", err.Error())
	}

	var paths []string
	for _, fd := range fileDiffs {
		for _, name := range []string{fd.OrigName, fd.NewName} {
			if name = stripPrefix(name); name != "" {
				paths = append(paths, name)
			}
		}
	}
	return domain.NewChangeSet(paths...), nil
}

// stripPrefix removes the a/ and b/ prefixes git adds to diff file names.
func stripPrefix(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == devNull {
		return ""
	}
	for _, prefix := range []string{"a/", "b/"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			return rest
		}
	}
	return name
}
