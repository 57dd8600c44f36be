package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/fritzlink/fritzlink-go/pkg/descriptor"
)

// SnapshotVersion is the current version of the snapshot file format.
const SnapshotVersion = 1

// Format selects the on-disk encoding of a snapshot.
type Format uint8

const (
	// FormatCBOR is the default binary encoding.
	FormatCBOR Format = iota
	// FormatJSON writes a human-readable snapshot.
	FormatJSON
)

// String returns the file extension for the format.
func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "cbor"
}

// ErrVersionMismatch indicates a snapshot written by an incompatible
// format version.
var ErrVersionMismatch = errors.New("snapshot format version mismatch")

// ErrStale indicates a snapshot whose recorded device identity no
// longer matches the live device.
var ErrStale = errors.New("snapshot does not match device identity")

// Snapshot is the persisted form of a scanned device.
type Snapshot struct {
	// Version is the snapshot file format version.
	Version int `json:"version"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// Address is the device address the snapshot was taken from.
	Address string `json:"address"`

	// ModelName identifies the device model.
	ModelName string `json:"model_name"`

	// SystemVersion is the firmware version string.
	SystemVersion string `json:"system_version"`

	// Descriptions are the parsed root descriptions, schemas included.
	Descriptions []*descriptor.Description `json:"descriptions"`
}

// Matches reports whether the snapshot was taken from a device with the
// given identity.
func (s *Snapshot) Matches(modelName, systemVersion string) bool {
	return s.ModelName == modelName && s.SystemVersion == systemVersion
}

var snapshotEncMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	snapshotEncMode, err = opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("cache: invalid encoder options: %v", err))
	}
}

// DefaultDir returns the per-user snapshot directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".fritzlink"), nil
}

// FileName derives the snapshot file name for a device address. The
// address is flattened so one directory can hold snapshots for several
// devices.
func FileName(address string, format Format) string {
	flat := strings.NewReplacer("http://", "", "https://", "", ".", "_", ":", "_").Replace(address)
	return fmt.Sprintf("device_cache_%s.%s", flat, format)
}

// Store reads and writes snapshots below one directory.
type Store struct {
	mu     sync.Mutex
	dir    string
	format Format
}

// NewStore creates a store writing snapshots in the given format below
// dir. An empty dir selects DefaultDir at first use.
func NewStore(dir string, format Format) *Store {
	return &Store{dir: dir, format: format}
}

func (s *Store) path(address string) (string, error) {
	dir := s.dir
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, FileName(address, s.format)), nil
}

// Save writes the snapshot for its address, creating the directory if
// needed.
func (s *Store) Save(snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(snapshot.Address)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	snapshot.Version = SnapshotVersion
	if snapshot.SavedAt.IsZero() {
		snapshot.SavedAt = time.Now()
	}

	var data []byte
	if s.format == FormatJSON {
		data, err = json.MarshalIndent(snapshot, "", "  ")
	} else {
		data, err = snapshotEncMode.Marshal(snapshot)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads the snapshot for an address and restores the derived
// lookup tables of every description.
// Returns nil, nil if no snapshot exists.
func (s *Store) Load(address string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(address)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{}
	if s.format == FormatJSON {
		err = json.Unmarshal(data, snapshot)
	} else {
		err = cbor.Unmarshal(data, snapshot)
	}
	if err != nil {
		return nil, err
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: got %d, want %d",
			ErrVersionMismatch, snapshot.Version, SnapshotVersion)
	}

	for _, description := range snapshot.Descriptions {
		if err := description.RebuildIndexes(); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}

// Clear removes the snapshot for an address. Removing a snapshot that
// does not exist is not an error.
func (s *Store) Clear(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(address)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
