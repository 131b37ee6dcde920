package pkg

import (
	"os"
	"path/filepath"
	"strings"
)

// InfoSource reads the handful of .info/README facts the engine treats
// as pure, externally-supplied data: the README text and the REQUIRES=
// field used to seed a default dependency file and to compute a
// package's info CRC. Full .info parsing (MD5SUM, DOWNLOAD, MAINTAINER,
// etc.) is out of this engine's scope; only these two values are ever
// consumed, and this type exists so tests can substitute fixtures
// without real SlackBuild directories on disk (the same role teacher's
// ports_interface.go gives its PortsQuerier).
type InfoSource interface {
	Readme(sboDir string) (string, error)
	Requires(sboDir string) ([]string, error)
}

// fileInfoSource reads directly from a checked-out repository.
type fileInfoSource struct{ repoRoot string }

func NewFileInfoSource(repoRoot string) InfoSource { return &fileInfoSource{repoRoot: repoRoot} }

func (s *fileInfoSource) Readme(sboDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.repoRoot, sboDir, "README"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *fileInfoSource) Requires(sboDir string) ([]string, error) {
	name := filepath.Base(sboDir)
	data, err := os.ReadFile(filepath.Join(s.repoRoot, sboDir, name+".info"))
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "REQUIRES="); ok {
			v = strings.Trim(v, `"`)
			return strings.Fields(v), nil
		}
	}
	return nil, nil
}

// CRCOf computes p's info CRC by reading its README and REQUIRES= field
// through src.
func CRCOf(src InfoSource, p *Package) (uint32, error) {
	if p.SBODir == "" {
		return 0, nil
	}
	readme, err := src.Readme(p.SBODir)
	if err != nil {
		return 0, err
	}
	reqs, err := src.Requires(p.SBODir)
	if err != nil {
		return 0, err
	}
	return InfoCRC(readme, reqs), nil
}
