package analysis

import (
	"path/filepath"

	"github.com/saworbit/spectra/scan"
)

// semanticEntropyCeiling gates tagging: above this entropy the content is
// effectively random (compressed or encrypted) and an extension-based
// category would be a guess, so no tag is assigned.
const semanticEntropyCeiling = 6.0

var semanticByExt = map[string]string{
	"pdf": "document", "doc": "document", "docx": "document",
	"md": "document", "txt": "document", "rtf": "document",
	"odt": "document",

	"go": "source-code", "rs": "source-code", "py": "source-code",
	"js": "source-code", "ts": "source-code", "c": "source-code",
	"h": "source-code", "cpp": "source-code", "java": "source-code",
	"rb": "source-code", "sh": "source-code",

	"jpg": "media", "jpeg": "media", "png": "media", "gif": "media",
	"svg": "media", "mp3": "media", "mp4": "media", "mov": "media",
	"wav": "media", "mkv": "media",

	"zip": "archive", "tar": "archive", "gz": "archive",
	"bz2": "archive", "xz": "archive", "7z": "archive", "rar": "archive",

	"json": "data", "yaml": "data", "yml": "data", "csv": "data",
	"xml": "data", "toml": "data", "parquet": "data", "db": "data",
	"sqlite": "data",
}

// SemanticTag assigns a coarse content category from the file extension,
// gated on the sampled entropy. The boolean is false when no confident tag
// applies.
func SemanticTag(path string, entropy float64) (string, bool) {
	if entropy >= semanticEntropyCeiling {
		return "", false
	}
	ext, ok := scan.NormalizeExt(filepath.Base(path))
	if !ok {
		return "", false
	}
	tag, ok := semanticByExt[ext]
	return tag, ok
}
