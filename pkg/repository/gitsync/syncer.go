package gitsync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const archiveExt = ".har"

// Syncer keeps a local clone of a shared archive repository up to date.
// Teams record interactions on development machines, commit the archives,
// and CI replays against the clone the Syncer maintains.
type Syncer struct {
	config    Config
	localPath string
	auth      AuthProvider
	logger    *slog.Logger

	mu      sync.RWMutex
	repo    *gogit.Repository
	metrics SyncMetrics
}

// NewSyncer creates a syncer for the configured archive repository.
func NewSyncer(cfg Config, logger *slog.Logger) (*Syncer, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	auth, err := NewAuthProvider(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "callisto-archives")
	}

	return &Syncer{
		config:    cfg,
		localPath: localPath,
		auth:      auth,
		logger:    logger.With("component", "repository.gitsync"),
	}, nil
}

// Clone initializes the local clone. An existing clone is opened in place
// unless CleanOnStart is set, in which case it is removed and cloned fresh.
func (s *Syncer) Clone(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		s.metrics.CloneDuration = time.Since(start)
	}()

	if s.config.CleanOnStart {
		if err := os.RemoveAll(s.localPath); err != nil {
			return fmt.Errorf("failed to clean existing clone: %w", err)
		}
	}

	if _, err := os.Stat(filepath.Join(s.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(s.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing clone: %w", err)
		}
		s.repo = repo
		s.logger.Info("opened existing archive clone", "path", s.localPath)
		return nil
	}

	if err := os.MkdirAll(s.localPath, 0o755); err != nil {
		return fmt.Errorf("failed to create clone directory: %w", err)
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, s.localPath, false, &gogit.CloneOptions{
		URL:           s.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(s.config.Branch),
		SingleBranch:  s.config.Depth > 0,
		Depth:         s.config.Depth,
		Auth:          auth,
	})
	if err != nil {
		return fmt.Errorf("failed to clone archive repository: %w", err)
	}

	s.repo = repo
	s.logger.Info("cloned archive repository",
		"repository", s.config.Repository,
		"branch", s.config.Branch,
		"path", s.localPath,
		"auth", s.auth.Type())
	return nil
}

// Pull fetches the latest archives from the remote. It reports whether the
// clone moved and which archive files changed. Pull never force-updates.
func (s *Syncer) Pull(ctx context.Context) (*PullResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		s.metrics.PullDuration = time.Since(start)
		s.metrics.LastPullTime = time.Now()
	}()

	if s.repo == nil {
		return nil, fmt.Errorf("clone not initialized, call Clone first")
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	fromSHA := ref.Hash().String()

	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth: %w", err)
	}

	pullCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName: "origin",
		Force:      false,
		Auth:       auth,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		s.metrics.FailedPulls++
		return nil, fmt.Errorf("failed to pull archives: %w", err)
	}
	s.metrics.SuccessfulPulls++

	newRef, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get new HEAD: %w", err)
	}
	toSHA := newRef.Hash().String()

	result := &PullResult{
		FromSHA:    fromSHA,
		ToSHA:      toSHA,
		HadChanges: fromSHA != toSHA,
	}
	if result.HadChanges {
		changed, err := s.changedArchives(fromSHA, toSHA)
		if err != nil {
			return nil, fmt.Errorf("failed to diff archives: %w", err)
		}
		result.ChangedArchives = changed
		s.metrics.LastCommitSHA = toSHA
		s.logger.Info("archives updated",
			"from", fromSHA,
			"to", toSHA,
			"changed", len(changed))
	}
	return result, nil
}

// CurrentCommit returns the commit the local clone points at.
func (s *Syncer) CurrentCommit() (*CommitInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repo == nil {
		return nil, fmt.Errorf("clone not initialized, call Clone first")
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	return &CommitInfo{
		SHA:        commit.Hash.String(),
		Author:     commit.Author.Name,
		Email:      commit.Author.Email,
		Timestamp:  commit.Author.When,
		Message:    commit.Message,
		Branch:     s.config.Branch,
		Repository: s.config.Repository,
	}, nil
}

// ListArchiveFiles returns every archive file under the configured path in
// the clone, recursively, skipping hidden files.
func (s *Syncer) ListArchiveFiles() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := s.archiveDirLocked()
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("archive path does not exist: %w", err)
	}

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if filepath.Ext(path) == archiveExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk archive directory: %w", err)
	}
	return files, nil
}

// ArchiveDir returns the local directory holding the synced archives. It is
// suitable as a FileRepository root for replay.
func (s *Syncer) ArchiveDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.archiveDirLocked()
}

func (s *Syncer) archiveDirLocked() string {
	return filepath.Join(s.localPath, s.config.Path)
}

// LocalPath returns the clone's location on disk.
func (s *Syncer) LocalPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localPath
}

// Metrics returns a copy of the current synchronization metrics.
func (s *Syncer) Metrics() SyncMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// changedArchives diffs two commits and returns the archive files touched
// between them. Deleted archives are reported under their old path.
func (s *Syncer) changedArchives(fromSHA, toSHA string) ([]string, error) {
	fromCommit, err := s.repo.CommitObject(plumbing.NewHash(fromSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get from commit: %w", err)
	}
	toCommit, err := s.repo.CommitObject(plumbing.NewHash(toSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get to commit: %w", err)
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get from tree: %w", err)
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get to tree: %w", err)
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	var files []string
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		if filepath.Ext(name) == archiveExt {
			files = append(files, name)
		}
	}
	return files, nil
}
