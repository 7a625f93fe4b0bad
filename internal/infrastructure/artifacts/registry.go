package artifacts

import (
	"encoding/json"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// hardhatArtifact mirrors the JSON files emitted by Hardhat under artifacts/.
type hardhatArtifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// Registry loads artifacts by contract name from a directory tree.
type Registry struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]*Artifact
}

func NewRegistry(dir string) (*Registry, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("artifacts dir is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "artifacts dir")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("artifacts dir %s is not a directory", dir)
	}
	return NewRegistryFS(os.DirFS(dir)), nil
}

func NewRegistryFS(fsys fs.FS) *Registry {
	return &Registry{fsys: fsys, cache: make(map[string]*Artifact)}
}

// Load returns the artifact for name, reading it on first use.
func (r *Registry) Load(name string) (*Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if artifact, ok := r.cache[name]; ok {
		return artifact, nil
	}
	path, err := r.find(name)
	if err != nil {
		return nil, err
	}
	raw, err := fs.ReadFile(r.fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read artifact %s", name)
	}
	artifact, err := Parse(name, raw)
	if err != nil {
		return nil, err
	}
	r.cache[name] = artifact
	return artifact, nil
}

// ABI is a shortcut for Load(name).ABI.
func (r *Registry) ABI(name string) (abi.ABI, error) {
	artifact, err := r.Load(name)
	if err != nil {
		return abi.ABI{}, err
	}
	return artifact.ABI, nil
}

func (r *Registry) find(name string) (string, error) {
	direct := name + ".json"
	if _, err := fs.Stat(r.fsys, direct); err == nil {
		return direct, nil
	}

	var found string
	err := fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(p, "/"+direct) {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "search artifact %s", name)
	}
	if found == "" {
		return "", errors.Errorf("artifact %s not found", name)
	}
	return found, nil
}

// Parse decodes a Hardhat artifact document.
func Parse(name string, raw []byte) (*Artifact, error) {
	var doc hardhatArtifact
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "decode artifact %s", name)
	}
	if len(doc.ABI) == 0 {
		return nil, errors.Errorf("artifact %s has no abi", name)
	}
	parsed, err := abi.JSON(strings.NewReader(string(doc.ABI)))
	if err != nil {
		return nil, errors.Wrapf(err, "parse abi of %s", name)
	}

	var bytecode []byte
	if code := strings.TrimSpace(doc.Bytecode); code != "" && code != "0x" {
		bytecode, err = hexutil.Decode(code)
		if err != nil {
			return nil, errors.Wrapf(err, "decode bytecode of %s", name)
		}
	}
	if doc.ContractName != "" {
		name = doc.ContractName
	}
	return &Artifact{Name: name, ABI: parsed, Bytecode: bytecode}, nil
}
