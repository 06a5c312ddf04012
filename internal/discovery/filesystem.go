package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const gitMetadataDirectoryNameConstant = ".git"

// FilesystemRepositoryDiscoverer locates git checkouts on disk. In the
// default mode only the immediate children of each root are inspected; the
// recursive mode walks entire subtrees and stops descending at the first
// .git entry on each branch.
type FilesystemRepositoryDiscoverer struct {
	recursive bool
}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer.
func NewFilesystemRepositoryDiscoverer(recursive bool) *FilesystemRepositoryDiscoverer {
	return &FilesystemRepositoryDiscoverer{recursive: recursive}
}

// DiscoverRepositories scans the provided roots and returns the deduplicated,
// sorted list of directories containing a .git entry.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	seen := make(map[string]struct{})
	var repositories []string

	recordRepository := func(repositoryPath string) {
		if _, alreadySeen := seen[repositoryPath]; alreadySeen {
			return
		}
		seen[repositoryPath] = struct{}{}
		repositories = append(repositories, repositoryPath)
	}

	for _, root := range roots {
		var scanError error
		if discoverer.recursive {
			scanError = scanSubtree(root, recordRepository)
		} else {
			scanError = scanImmediateChildren(root, recordRepository)
		}
		if scanError != nil {
			return nil, scanError
		}
	}

	sort.Strings(repositories)
	return repositories, nil
}

func scanSubtree(root string, recordRepository func(string)) error {
	return filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return nil
		}

		if directoryEntry.Name() != gitMetadataDirectoryNameConstant {
			return nil
		}

		recordRepository(filepath.Dir(path))

		if directoryEntry.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
}

func scanImmediateChildren(root string, recordRepository func(string)) error {
	directoryEntries, readError := os.ReadDir(root)
	if readError != nil {
		return readError
	}

	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}
		candidatePath := filepath.Join(root, directoryEntry.Name())
		if _, statError := os.Stat(filepath.Join(candidatePath, gitMetadataDirectoryNameConstant)); statError != nil {
			continue
		}
		recordRepository(candidatePath)
	}
	return nil
}
