// Copyright 2026 The Witness Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package validation

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/log"
	"github.com/in-toto/go-ers/registry"
)

const (
	ProfileRFC4998  = "https://tools.ietf.org/html/rfc4998"
	ProfileTRESOR   = "TR-ESOR"
	ProfileBasisERS = "Basis-ERS"

	DefaultProfile = ProfileRFC4998
)

// HashSortingMode selects how the members of a hash tree group are ordered
// before they are concatenated.
type HashSortingMode int

const (
	Unsorted HashSortingMode = iota
	Sorted
	Both
)

func (m HashSortingMode) String() string {
	switch m {
	case Sorted:
		return "SORTED"
	case Both:
		return "BOTH"
	default:
		return "UNSORTED"
	}
}

// ParseHashSortingMode is case insensitive. Unknown values fall back to
// UNSORTED.
func ParseHashSortingMode(s string) HashSortingMode {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SORTED":
		return Sorted
	case "BOTH":
		return Both
	case "UNSORTED", "":
		return Unsorted
	default:
		log.Warnf("(validation) unknown hash sorting mode %q, using UNSORTED", s)
		return Unsorted
	}
}

// Profile is the policy a record is validated under. Profiles differ in data
// only; validators read the flags they care about.
type Profile struct {
	Name                string
	HashSorting         HashSortingMode
	AllowAttributes     bool
	AllowCryptoInfo     bool
	AllowEncryptionInfo bool
	RequiredVersion     int
	// VersionViolation is the message reported for a version other than
	// RequiredVersion.
	VersionViolation string
	RequireChain     bool
	// CheckTokenLayout enables the structural checks of the token envelope.
	CheckTokenLayout bool

	allowedDigests []string
	digestGlobs    []glob.Glob
}

// AllowedDigests returns the OID patterns the profile accepts. An empty list
// accepts every algorithm.
func (p *Profile) AllowedDigests() []string {
	return p.allowedDigests
}

// SetAllowedDigests compiles OID patterns such as "2.16.840.1.101.3.4.2.*".
func (p *Profile) SetAllowedDigests(patterns []string) error {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return fmt.Errorf("invalid digest pattern %q: %w", pattern, err)
		}

		globs = append(globs, g)
	}

	p.allowedDigests = append([]string{}, patterns...)
	p.digestGlobs = globs
	return nil
}

func (p *Profile) DigestAllowed(oid string) bool {
	if len(p.digestGlobs) == 0 {
		return true
	}

	for _, g := range p.digestGlobs {
		if g.Match(oid) {
			return true
		}
	}

	return false
}

func (p *Profile) clone() *Profile {
	c := *p
	c.allowedDigests = append([]string{}, p.allowedDigests...)
	c.digestGlobs = append([]glob.Glob{}, p.digestGlobs...)
	return &c
}

func rfc4998Profile() *Profile {
	return &Profile{
		Name:                ProfileRFC4998,
		AllowAttributes:     true,
		AllowCryptoInfo:     true,
		AllowEncryptionInfo: true,
		RequiredVersion:     1,
		VersionViolation:    "unexpected version number",
	}
}

func trEsorProfile() *Profile {
	p := rfc4998Profile()
	p.Name = ProfileTRESOR
	return p
}

func basisErsProfile() *Profile {
	p := rfc4998Profile()
	p.Name = ProfileBasisERS
	p.AllowAttributes = false
	p.AllowCryptoInfo = false
	p.AllowEncryptionInfo = false
	p.VersionViolation = "must be 1"
	p.RequireChain = true
	p.CheckTokenLayout = true
	_ = p.SetAllowedDigests([]string{
		cryptoutil.OIDRIPEMD160,
		cryptoutil.OIDSHA1,
		cryptoutil.OIDSHA224,
		cryptoutil.OIDSHA256,
		cryptoutil.OIDSHA384,
		cryptoutil.OIDSHA512,
	})

	return p
}

// profileOptions exposes the fields of a profile as configuration options
// whose defaults are the values of base.
func profileOptions(base *Profile) []registry.Configurer {
	return []registry.Configurer{
		registry.StringConfigOption(
			"hash-sorting-mode",
			"Order of hash tree group members before concatenation: UNSORTED, SORTED or BOTH",
			base.HashSorting.String(),
			func(p *Profile, v string) (*Profile, error) {
				p.HashSorting = ParseHashSortingMode(v)
				return p, nil
			},
		),
		registry.StringSliceConfigOption(
			"allowed-digests",
			"OID patterns of acceptable digest algorithms, empty accepts all",
			base.allowedDigests,
			func(p *Profile, v []string) (*Profile, error) {
				return p, p.SetAllowedDigests(v)
			},
		),
		registry.BoolConfigOption(
			"allow-attributes",
			"Accept attributes in ArchiveTimeStamps",
			base.AllowAttributes,
			func(p *Profile, v bool) (*Profile, error) {
				p.AllowAttributes = v
				return p, nil
			},
		),
		registry.BoolConfigOption(
			"allow-crypto-info",
			"Accept cryptoInfos in the evidence record",
			base.AllowCryptoInfo,
			func(p *Profile, v bool) (*Profile, error) {
				p.AllowCryptoInfo = v
				return p, nil
			},
		),
		registry.BoolConfigOption(
			"allow-encryption-info",
			"Accept encryptionInfo in the evidence record",
			base.AllowEncryptionInfo,
			func(p *Profile, v bool) (*Profile, error) {
				p.AllowEncryptionInfo = v
				return p, nil
			},
		),
		registry.IntConfigOption(
			"required-version",
			"Version number an evidence record must carry",
			base.RequiredVersion,
			func(p *Profile, v int) (*Profile, error) {
				p.RequiredVersion = v
				return p, nil
			},
		),
		registry.BoolConfigOption(
			"require-chain",
			"Reject records without any ArchiveTimeStampChain",
			base.RequireChain,
			func(p *Profile, v bool) (*Profile, error) {
				p.RequireChain = v
				return p, nil
			},
		),
	}
}

// RegisterProfile makes base available under its name. Options applied later
// start from the values of base.
func RegisterProfile(profiles registry.Registry[*Profile], base *Profile) {
	profiles.Register(base.Name, func() *Profile { return base.clone() }, profileOptions(base)...)
}

// NewProfiles returns a registry holding the built-in profiles.
func NewProfiles() registry.Registry[*Profile] {
	profiles := registry.New[*Profile]()
	RegisterProfile(profiles, rfc4998Profile())
	RegisterProfile(profiles, trEsorProfile())
	RegisterProfile(profiles, basisErsProfile())
	return profiles
}
