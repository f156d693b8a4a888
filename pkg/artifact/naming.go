package artifact

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HiddenPrefix marks directory entries that are never offered as options.
const HiddenPrefix = "."

// MaxIdentifierLength bounds identifiers accepted from callers (file name limit on common file systems).
const MaxIdentifierLength = 255

// Fixed artifact file names inside an entity folder.
const (
	PlatformNetworkFile = "network_plot.html"
	PlatformDensityFile = "density_plot.html"
	ClustersDir         = "clusters"
	UserNetworkFile     = "network.html"
	UserDensityFile     = "density.html"
)

// Pattern is a file naming convention of the form <Prefix><name><Suffix>.
// Identifiers derived from file names are always produced by Parse and turned back
// into file names by Format, so discovery and resolution cannot drift apart.
type Pattern struct {
	Prefix string
	Suffix string
}

var (
	// ClusterPattern names interactive cluster views: cluster_<name>.html
	ClusterPattern = Pattern{Prefix: "cluster_", Suffix: ".html"}

	// WordcloudPattern names cluster word cloud images: wordcloud_<name>.png
	WordcloudPattern = Pattern{Prefix: "wordcloud_", Suffix: ".png"}

	// CategoryPattern names polarization and cohesion charts: <category>.html
	CategoryPattern = Pattern{Suffix: ".html"}
)

// Parse extracts the identifier from a file name.
// Returns false if the name does not carry both affixes or the identifier would be empty.
func (p Pattern) Parse(filename string) (string, bool) {
	if len(filename) <= len(p.Prefix)+len(p.Suffix) {
		return "", false
	}
	if !strings.HasPrefix(filename, p.Prefix) || !strings.HasSuffix(filename, p.Suffix) {
		return "", false
	}
	return filename[len(p.Prefix) : len(filename)-len(p.Suffix)], true
}

// Format builds the file name for an identifier.
func (p Pattern) Format(name string) string {
	return p.Prefix + name + p.Suffix
}

func (p Pattern) String() string {
	return p.Format("<name>")
}

// ValidateIdentifier checks that an option identifier is safe to join into a store path.
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if len(id) > MaxIdentifierLength {
		return fmt.Errorf("identifier too long: %d characters (max: %d)", len(id), MaxIdentifierLength)
	}

	if strings.HasPrefix(id, HiddenPrefix) {
		return fmt.Errorf("invalid identifier '%s': hidden entries cannot be selected", id)
	}

	if strings.ContainsAny(id, "/"+string(filepath.Separator)) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("invalid identifier '%s': must not contain path separators", id)
	}

	return nil
}

// DisplayLabel renders an identifier for humans: underscores become spaces and only the
// first letter is upper case ("medios_digitales" -> "Medios digitales").
func DisplayLabel(id string) string {
	if id == "" {
		return ""
	}

	label := strings.ToLower(strings.ReplaceAll(id, "_", " "))
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, HiddenPrefix)
}
