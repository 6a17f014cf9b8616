package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the roles.yaml layout:
//
//	token: ${OWNER_TOKEN}
//	roles:
//	  - identity: acme-factory
//	    role: manufacturer
type seedFile struct {
	Token string           `yaml:"token"`
	Roles []seedAssignment `yaml:"roles"`
}

type seedAssignment struct {
	Identity string `yaml:"identity"`
	Role     string `yaml:"role"`
}

// parseSeed decodes a seed file. Environment references in the token are expanded;
// an empty token falls back to LEDGER_TOKEN.
func parseSeed(r io.Reader) (*seedFile, error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	seed.Token = os.ExpandEnv(seed.Token)
	if seed.Token == "" {
		seed.Token = os.Getenv("LEDGER_TOKEN")
	}
	if seed.Token == "" {
		return nil, fmt.Errorf("seed file has no token and LEDGER_TOKEN is not set")
	}

	for i, a := range seed.Roles {
		if a.Identity == "" || a.Role == "" {
			return nil, fmt.Errorf("roles[%d]: identity and role are required", i)
		}
	}
	return &seed, nil
}
