package services

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/0unveiled/backend/internal/analysis"
	"github.com/0unveiled/backend/internal/clients/github"
	"github.com/0unveiled/backend/internal/platform/envutil"
	"github.com/0unveiled/backend/internal/platform/logger"
)

const (
	defaultMaxFilesPerRepo = 50
	contentFetchWorkers    = 5
)

// RepoFetcher walks one repository and returns its file listing with content
// for the highest-priority analyzable files.
type RepoFetcher interface {
	FetchRepository(ctx context.Context, owner, repo string) ([]analysis.SourceFile, error)
}

type githubFetcher struct {
	log      *logger.Logger
	client   github.Client
	maxFiles int
}

func NewRepoFetcher(log *logger.Logger, client github.Client) RepoFetcher {
	return &githubFetcher{
		log:      log.With("service", "repo_fetcher"),
		client:   client,
		maxFiles: envutil.Int("ANALYSIS_MAX_FILES", defaultMaxFilesPerRepo),
	}
}

// Directory names never worth exploring: dependency trees, build output,
// editor state, asset dumps. Workflow configs stay reachable so the CI
// detection rules see them.
var skipDirNames = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "__pycache__": true, ".pytest_cache": true,
	"venv": true, "env": true, "virtualenv": true, ".venv": true,
	"build": true, "dist": true, "target": true, "bin": true, "obj": true,
	"out": true, ".gradle": true, "vendor": true, "bower_components": true,
	".npm": true, ".vscode": true, ".idea": true, ".vs": true,
	"docs": true, "documentation": true, "examples": true, "samples": true,
	"demo": true, "demos": true, "test-data": true, "testdata": true,
	"fixtures": true, "mocks": true,
	"assets": true, "static": true, "public": true, "images": true,
	"img": true, "fonts": true, "media": true,
	"coverage": true, ".nyc_output": true, "htmlcov": true,
	"tmp": true, "temp": true, "cache": true, ".cache": true,
	"logs": true, "log": true,
}

var dotDirExemptions = map[string]bool{".github": true, ".gitlab": true}

func skipDirectory(dirPath string) bool {
	for _, part := range strings.Split(strings.ToLower(dirPath), "/") {
		if skipDirNames[part] {
			return true
		}
		if strings.HasPrefix(part, ".") && len(part) > 1 && !dotDirExemptions[part] {
			return true
		}
	}
	return false
}

// Extensions whose content is worth fetching: source files the metric and
// security passes read, plus manifests and configs the extractors parse.
var fetchableExts = map[string]bool{
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".go": true, ".rs": true, ".java": true, ".kt": true, ".swift": true,
	".rb": true, ".php": true, ".c": true, ".h": true, ".cpp": true,
	".cc": true, ".cxx": true, ".hpp": true, ".cs": true, ".scala": true,
	".clj": true, ".ex": true, ".exs": true, ".erl": true, ".hs": true,
	".lua": true, ".r": true, ".m": true, ".dart": true, ".vue": true,
	".svelte": true, ".sh": true, ".bash": true, ".ps1": true, ".sql": true,
	".html": true, ".htm": true, ".css": true, ".scss": true, ".sass": true,
	".less": true,
	".json": true, ".yml": true, ".yaml": true, ".toml": true, ".xml": true,
	".ini": true, ".cfg": true, ".conf": true, ".tf": true, ".hcl": true,
}

func fetchableFile(relPath string) bool {
	return fetchableExts[strings.ToLower(path.Ext(relPath))]
}

// Paths excluded from content fetching even when the extension qualifies.
var skipContentMarkers = []string{
	"node_modules/", "__pycache__/", "vendor/", "dist/", "build/",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
}

func skipContent(relPath string) bool {
	lower := strings.ToLower(relPath)
	for _, marker := range skipContentMarkers {
		if strings.HasPrefix(lower, marker) || strings.Contains(lower, "/"+marker) {
			return true
		}
	}
	return false
}

// FetchRepository breadth-first walks the tree, collecting file metadata for
// every reachable entry, then fetches content for the top maxFiles analyzable
// files (source files shallow-first).
func (f *githubFetcher) FetchRepository(ctx context.Context, owner, repo string) ([]analysis.SourceFile, error) {
	dirs := []string{""}
	visited := map[string]bool{"": true}
	var entries []github.ContentEntry

	for len(dirs) > 0 && len(entries) < f.maxFiles*3 {
		current := dirs[0]
		dirs = dirs[1:]

		listing, err := f.client.ListContents(ctx, owner, repo, current)
		if err != nil {
			if current == "" {
				return nil, err
			}
			f.log.Warn("directory listing failed", "repo", owner+"/"+repo, "path", current, "error", err)
			continue
		}
		for _, entry := range listing {
			switch entry.Type {
			case "file":
				entries = append(entries, entry)
			case "dir":
				if !visited[entry.Path] && !skipDirectory(entry.Path) {
					visited[entry.Path] = true
					dirs = append(dirs, entry.Path)
				}
			}
		}
	}

	// Source files first, shallow before deep, then lexical.
	sort.SliceStable(entries, func(i, j int) bool {
		fi, fj := fetchableFile(entries[i].Path), fetchableFile(entries[j].Path)
		if fi != fj {
			return fi
		}
		di, dj := strings.Count(entries[i].Path, "/"), strings.Count(entries[j].Path, "/")
		if di != dj {
			return di < dj
		}
		return entries[i].Path < entries[j].Path
	})

	files := make([]analysis.SourceFile, len(entries))
	for i, entry := range entries {
		files[i] = analysis.SourceFile{Path: entry.Path, Size: int(entry.Size)}
	}

	var mu sync.Mutex
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(contentFetchWorkers)
	fetched := 0
	for i := range files {
		if fetched >= f.maxFiles {
			break
		}
		if !fetchableFile(files[i].Path) || skipContent(files[i].Path) {
			continue
		}
		fetched++
		idx := i
		grp.Go(func() error {
			content, err := f.client.GetFileContent(grpCtx, owner, repo, files[idx].Path)
			if err != nil {
				f.log.Warn("file content fetch failed", "repo", owner+"/"+repo, "path", files[idx].Path, "error", err)
				return nil
			}
			mu.Lock()
			files[idx].Content = content
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
