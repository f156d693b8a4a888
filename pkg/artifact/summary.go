package artifact

import (
	"os"
	"path/filepath"
)

// Summary holds the overview facts about one entity folder.
type Summary struct {
	NetworkAvailable bool `json:"network_available"`
	DensityAvailable bool `json:"density_available"`
	ClusterCount     int  `json:"cluster_count"`
}

// PlatformSummary pairs a platform with its Summary.
type PlatformSummary struct {
	Platform string  `json:"platform"`
	Label    string  `json:"label"`
	Summary  Summary `json:"summary"`
}

// Summarize inspects entityFolder for the network plot, the density plot and the
// cluster views under clusters/. It never fails: anything missing reads as false or 0,
// so partially generated folders still produce a summary.
func Summarize(entityFolder string) Summary {
	summary := Summary{
		NetworkAvailable: fileExists(filepath.Join(entityFolder, PlatformNetworkFile)),
		DensityAvailable: fileExists(filepath.Join(entityFolder, PlatformDensityFile)),
	}

	clusters, err := ListOptions(filepath.Join(entityFolder, ClustersDir), ClusterPattern)
	if err == nil {
		summary.ClusterCount = len(clusters)
	}

	return summary
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
