package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mercator-hq/callisto/pkg/archive"
	"mercator-hq/callisto/pkg/interaction"
	"mercator-hq/callisto/pkg/scrub"
)

const fileBackend = "file"

// traceDir is the subdirectory of the root that holds all recordings.
const traceDir = "trace"

// archiveExt is the archive file extension.
const archiveExt = ".har"

// fileLocks serializes writers per archive path across every
// FileRepository instance in the process. Different archives never
// contend.
var fileLocks = newLockRegistry()

// FileConfig configures the archive-file repository. Every option has an
// explicit default; the zero value is not usable, use
// DefaultFileConfig.
type FileConfig struct {
	// Root is the logging root directory. Archives live under
	// Root/trace. Default: ".callisto".
	Root string

	// Aggregate switches from one archive per interaction name to a
	// single fixed-name archive holding every interaction.
	// Default: false.
	Aggregate bool

	// AggregateFile is the aggregate archive's file name under
	// Root/trace. Default: "archive.har".
	AggregateFile string

	// FastAppend enables the splice append path when growing an
	// existing per-interaction archive. The decode-append-re-encode
	// baseline remains the fallback whenever splicing is not safe.
	// Default: false.
	FastAppend bool

	// TextDumps writes one human-readable .txt file per captured
	// message next to the archive. Default: true.
	TextDumps bool
}

// DefaultFileConfig returns the default file repository configuration.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Root:          ".callisto",
		Aggregate:     false,
		AggregateFile: "archive.har",
		FastAppend:    false,
		TextDumps:     true,
	}
}

// FileRepository is the canonical repository: one HAR archive per
// interaction name (or one aggregate archive), plus human-readable
// per-message dumps. All writes are atomic and serialized per archive
// path.
type FileRepository struct {
	config   *FileConfig
	scrubber *scrub.Scrubber
	logger   *slog.Logger
}

// NewFileRepository creates a file repository. A nil config uses
// DefaultFileConfig; a nil scrubber uses the default scrub rules.
func NewFileRepository(cfg *FileConfig, scrubber *scrub.Scrubber) *FileRepository {
	if cfg == nil {
		cfg = DefaultFileConfig()
	}
	if cfg.Root == "" {
		cfg.Root = DefaultFileConfig().Root
	}
	if cfg.AggregateFile == "" {
		cfg.AggregateFile = DefaultFileConfig().AggregateFile
	}
	if scrubber == nil {
		scrubber = scrub.NewScrubber(nil)
	}
	return &FileRepository{
		config:   cfg,
		scrubber: scrubber,
		logger:   slog.Default().With("component", "repository.file"),
	}
}

// ArchivePath returns the archive file path for the given interaction
// name under the current configuration.
func (r *FileRepository) ArchivePath(name string) string {
	if r.config.Aggregate {
		return filepath.Join(r.config.Root, traceDir, r.config.AggregateFile)
	}
	san := SanitizeName(name)
	return filepath.Join(r.config.Root, traceDir, san, san+archiveExt)
}

func (r *FileRepository) dumpDir(name string) string {
	return filepath.Join(r.config.Root, traceDir, SanitizeName(name))
}

// Exists reports whether the named interaction can be loaded. In
// aggregate mode the archive is decoded to check for the name itself; a
// present file with someone else's recordings does not count.
func (r *FileRepository) Exists(ctx context.Context, name string) (bool, error) {
	path := r.ArchivePath(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, NewStorageError(fileBackend, "exists", err)
	}
	if !r.config.Aggregate {
		return true, nil
	}

	in, err := r.loadFrom(path, name)
	if err != nil {
		var noSuch *NoSuchInteractionError
		if errors.As(err, &noSuch) {
			return false, nil
		}
		return false, err
	}
	return in != nil, nil
}

// Load reads and decodes the named interaction. Missing archives fail
// with NoSuchInteractionError; undecodable ones with
// MalformedArchiveError.
func (r *FileRepository) Load(ctx context.Context, name string) (*interaction.Interaction, error) {
	return r.loadFrom(r.ArchivePath(name), name)
}

func (r *FileRepository) loadFrom(path, name string) (*interaction.Interaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewNoSuchInteractionError(name, fileBackend)
		}
		return nil, NewStorageError(fileBackend, "load", err)
	}

	a, err := archive.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	in, err := a.Interaction(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if in == nil || in.Empty() {
		return nil, NewNoSuchInteractionError(name, fileBackend)
	}
	return in, nil
}

// Store scrubs the interaction and persists it, creating a fresh archive
// or appending to the existing one. Concurrent stores for the same
// archive serialize; the file visible on disk is always a complete,
// valid archive. An empty interaction is never persisted.
func (r *FileRepository) Store(ctx context.Context, in *interaction.Interaction) (*StoreResult, error) {
	if in == nil || in.Empty() {
		return &StoreResult{Persisted: false}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError(fileBackend, "store", err)
	}

	scrubbed := r.scrubber.Scrub(in)
	path := r.ArchivePath(scrubbed.Name)

	unlock := fileLocks.lock(path)
	defer unlock()

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		data, serr := r.appendExisting(existing, scrubbed)
		if serr != nil {
			return nil, serr
		}
		if werr := r.writeAtomic(path, data); werr != nil {
			return nil, werr
		}
	case errors.Is(err, fs.ErrNotExist):
		data, serr := archive.Encode(archive.Build(scrubbed))
		if serr != nil {
			return nil, NewStorageError(fileBackend, "store", serr)
		}
		if werr := r.writeAtomic(path, data); werr != nil {
			return nil, werr
		}
	default:
		return nil, NewStorageError(fileBackend, "store", err)
	}

	if r.config.TextDumps {
		if derr := r.writeDumps(scrubbed); derr != nil {
			return nil, derr
		}
	}

	r.logger.Debug("interaction stored",
		"name", scrubbed.Name,
		"path", path,
		"messages", len(scrubbed.Messages))

	return &StoreResult{
		Persisted: true,
		Path:      path,
		Entries:   len(scrubbed.Messages),
	}, nil
}

// Rewrite replaces the stored form of the interaction, scrubbing every
// message with the current rules first. Unlike Store it never appends:
// the archive afterwards holds exactly the given messages. In aggregate
// mode other interactions in the file are preserved.
func (r *FileRepository) Rewrite(ctx context.Context, in *interaction.Interaction) (*StoreResult, error) {
	if in == nil || in.Empty() {
		return &StoreResult{Persisted: false}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError(fileBackend, "rewrite", err)
	}

	scrubbed := r.scrubber.Scrub(in)
	path := r.ArchivePath(scrubbed.Name)

	unlock := fileLocks.lock(path)
	defer unlock()

	fresh := archive.New()
	if r.config.Aggregate {
		existing, err := os.ReadFile(path)
		switch {
		case err == nil:
			a, derr := archive.Decode(existing)
			if derr != nil {
				return nil, fmt.Errorf("%s: %w", path, derr)
			}
			ins, derr := a.Interactions()
			if derr != nil {
				return nil, fmt.Errorf("%s: %w", path, derr)
			}
			for _, other := range ins {
				if other.Name != scrubbed.Name {
					fresh.AddInteraction(other)
				}
			}
		case errors.Is(err, fs.ErrNotExist):
			// Nothing to preserve.
		default:
			return nil, NewStorageError(fileBackend, "rewrite", err)
		}
	}
	fresh.AddInteraction(scrubbed)

	data, err := archive.Encode(fresh)
	if err != nil {
		return nil, NewStorageError(fileBackend, "rewrite", err)
	}
	if err := r.writeAtomic(path, data); err != nil {
		return nil, err
	}

	if r.config.TextDumps {
		if derr := r.rewriteDumps(scrubbed); derr != nil {
			return nil, derr
		}
	}

	r.logger.Debug("interaction rewritten",
		"name", scrubbed.Name,
		"path", path,
		"messages", len(scrubbed.Messages))

	return &StoreResult{
		Persisted: true,
		Path:      path,
		Entries:   len(scrubbed.Messages),
	}, nil
}

// rewriteDumps replaces the dump files instead of extending the
// numbering, so after a rewrite the dumps mirror the archive exactly.
func (r *FileRepository) rewriteDumps(in *interaction.Interaction) error {
	dir := r.dumpDir(in.Name)
	existing, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return NewStorageError(fileBackend, "rewrite", err)
	}
	for _, path := range existing {
		if err := os.Remove(path); err != nil {
			return NewStorageError(fileBackend, "rewrite", err)
		}
	}
	return r.writeDumps(in)
}

// appendExisting grows already-stored archive bytes with the
// interaction's messages. The splice fast path only serves
// per-interaction archives, whose page is guaranteed to exist; anything
// else, and any unrecognized file tail, takes the decode baseline.
func (r *FileRepository) appendExisting(existing []byte, in *interaction.Interaction) ([]byte, error) {
	if r.config.FastAppend && !r.config.Aggregate {
		entries := make([]archive.Entry, 0, len(in.Messages))
		for _, msg := range in.Messages {
			entries = append(entries, archive.EntryFromMessage(msg, in.Name))
		}
		if data, ok := archive.SpliceEntries(existing, entries...); ok {
			return data, nil
		}
	}

	a, err := archive.Decode(existing)
	if err != nil {
		return nil, err
	}
	a.AddInteraction(in)
	data, err := archive.Encode(a)
	if err != nil {
		return nil, NewStorageError(fileBackend, "store", err)
	}
	return data, nil
}

// writeAtomic writes data so readers never observe a partial file: the
// bytes land in a temp file in the same directory, then rename into
// place.
func (r *FileRepository) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewStorageError(fileBackend, "store", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return NewStorageError(fileBackend, "store", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return NewStorageError(fileBackend, "store", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return NewStorageError(fileBackend, "store", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return NewStorageError(fileBackend, "store", err)
	}
	return nil
}

// writeDumps writes one numbered .txt file per message, continuing the
// numbering from the dumps already present.
func (r *FileRepository) writeDumps(in *interaction.Interaction) error {
	dir := r.dumpDir(in.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewStorageError(fileBackend, "store", err)
	}

	existing, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return NewStorageError(fileBackend, "store", err)
	}
	next := len(existing) + 1

	for i, msg := range in.Messages {
		name := filepath.Join(dir, fmt.Sprintf("%04d.txt", next+i))
		if err := os.WriteFile(name, []byte(dumpMessage(msg)), 0o644); err != nil {
			return NewStorageError(fileBackend, "store", err)
		}
	}
	return nil
}

// dumpMessage renders one captured exchange for humans. The message has
// already been scrubbed.
func dumpMessage(msg interaction.Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", msg.Request.Method, msg.Request.URL)
	fmt.Fprintf(&b, "Started: %s\n", msg.Started.Format(time.RFC3339Nano))
	for _, h := range msg.Request.Headers {
		fmt.Fprintf(&b, "%s: %s\n", h.Name, h.Value)
	}
	if len(msg.Request.Body) > 0 {
		b.WriteString("\n")
		b.Write(msg.Request.Body)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n--- %s (%s) ---\n", statusLine(msg.Response), msg.Elapsed)
	for _, h := range msg.Response.Headers {
		fmt.Fprintf(&b, "%s: %s\n", h.Name, h.Value)
	}
	if len(msg.Response.Body) > 0 {
		b.WriteString("\n")
		b.Write(msg.Response.Body)
		b.WriteString("\n")
	}
	return b.String()
}

func statusLine(resp interaction.Response) string {
	if resp.StatusText != "" {
		return resp.StatusText
	}
	return fmt.Sprintf("%d", resp.Status)
}

// List returns the exact interaction names stored under the root, read
// from the archives' page ids so sanitization never distorts them.
func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	root := filepath.Join(r.config.Root, traceDir)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), archiveExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, NewStorageError(fileBackend, "list", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewStorageError(fileBackend, "list", err)
		}
		a, err := archive.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		ins, err := a.Interactions()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, in := range ins {
			name := in.Name
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), archiveExt)
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// PruneBefore removes every interaction whose newest message started
// before the cutoff. Per-interaction mode deletes whole directories;
// aggregate mode rewrites the archive without the expired interactions.
func (r *FileRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	root := filepath.Join(r.config.Root, traceDir)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), archiveExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, NewStorageError(fileBackend, "prune", err)
	}

	pruned := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return pruned, NewStorageError(fileBackend, "prune", err)
		}
		n, err := r.pruneArchive(path, cutoff)
		if err != nil {
			return pruned, err
		}
		pruned += n
	}
	return pruned, nil
}

func (r *FileRepository) pruneArchive(path string, cutoff time.Time) (int, error) {
	unlock := fileLocks.lock(path)
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, NewStorageError(fileBackend, "prune", err)
	}
	a, err := archive.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	ins, err := a.Interactions()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	var kept []*interaction.Interaction
	var droppedNames []string
	for _, in := range ins {
		if newestStart(in).Before(cutoff) {
			droppedNames = append(droppedNames, in.Name)
			continue
		}
		kept = append(kept, in)
	}
	if len(droppedNames) == 0 {
		return 0, nil
	}

	if len(kept) == 0 {
		if err := os.Remove(path); err != nil {
			return 0, NewStorageError(fileBackend, "prune", err)
		}
		if !r.config.Aggregate {
			// The per-interaction directory holds only this
			// archive and its dumps.
			if err := os.RemoveAll(filepath.Dir(path)); err != nil {
				return 0, NewStorageError(fileBackend, "prune", err)
			}
		}
	} else {
		fresh := archive.New()
		for _, in := range kept {
			fresh.AddInteraction(in)
		}
		out, err := archive.Encode(fresh)
		if err != nil {
			return 0, NewStorageError(fileBackend, "prune", err)
		}
		if err := r.writeAtomic(path, out); err != nil {
			return 0, err
		}
	}

	if r.config.Aggregate {
		for _, name := range droppedNames {
			if err := os.RemoveAll(r.dumpDir(name)); err != nil {
				return 0, NewStorageError(fileBackend, "prune", err)
			}
		}
	}

	r.logger.Info("pruned interactions",
		"count", len(droppedNames),
		"cutoff", cutoff.Format(time.RFC3339))
	return len(droppedNames), nil
}

func newestStart(in *interaction.Interaction) time.Time {
	var newest time.Time
	for _, msg := range in.Messages {
		if msg.Started.After(newest) {
			newest = msg.Started
		}
	}
	return newest
}
