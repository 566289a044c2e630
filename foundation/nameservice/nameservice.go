// Package nameservice reads a folder of ECDSA key files and lets miners and
// other accounts be referred to by the file's name instead of the address.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains the names and addresses of the known keys.
type NameService struct {
	addresses map[string]string
	names     map[string]string
}

// New constructs a name service from the key files found in the folder. A
// missing folder produces an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		addresses: make(map[string]string),
		names:     make(map[string]string),
	}

	if root == "" {
		return &ns, nil
	}

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return &ns, nil
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
		name := strings.TrimSuffix(filepath.Base(fileName), ".ecdsa")

		ns.addresses[name] = address
		ns.names[address] = name

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Resolve returns the address for the name. Anything that isn't a known
// name is returned as is.
func (ns *NameService) Resolve(nameOrAddress string) string {
	address, exists := ns.addresses[nameOrAddress]
	if !exists {
		return nameOrAddress
	}
	return address
}

// ResolveAll resolves every entry of the list.
func (ns *NameService) ResolveAll(list []string) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = ns.Resolve(v)
	}
	return out
}

// Lookup returns the name for the specified address.
func (ns *NameService) Lookup(address string) string {
	name, exists := ns.names[address]
	if !exists {
		return address
	}
	return name
}

// Copy returns a copy of the map of addresses and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.names))
	for address, name := range ns.names {
		cpy[address] = name
	}
	return cpy
}
