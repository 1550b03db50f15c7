package brand

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/fifo-tools/jadm/pkg/tools"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the brand manifest inside a brand directory.
const ManifestFile = "brand.yaml"

var brandLog = logrus.WithField("source", "brand")

// Step is a single command of a hook. Cmd and every argument are Go
// templates rendered against the Target.
type Step struct {
	Cmd  string   `yaml:"cmd"`
	Args []string `yaml:"args"`
}

// Manifest describes a brand on disk.
//
//	name: lx
//	init:
//	  - cmd: ./init
//	    args: ["{{.Path}}"]
//	halt:
//	  - cmd: ./halt
//	    args: ["{{.Path}}"]
//	boot: "/bin/sh /etc/rc"
type Manifest struct {
	Name string `yaml:"name"`
	Init []Step `yaml:"init"`
	Halt []Step `yaml:"halt"`
	Boot string `yaml:"boot"`
}

// Script is a brand whose hooks run commands described by a Manifest.
type Script struct {
	manifest Manifest
	dir      string
	runner   tools.Runner
}

// NewScript returns a brand for manifest. Relative commands are resolved
// against dir.
func NewScript(manifest Manifest, dir string, runner tools.Runner) *Script {
	return &Script{manifest: manifest, dir: dir, runner: runner}
}

// ReadManifest parses the brand manifest found in dir.
func ReadManifest(dir string) (manifest Manifest, err error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return
	}

	if err = yaml.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("failed to parse brand manifest in %s: %w", dir, err)
	}
	if manifest.Name == "" {
		manifest.Name = filepath.Base(dir)
	}
	if strings.TrimSpace(manifest.Boot) == "" {
		return manifest, fmt.Errorf("brand %s: boot must be non-empty", manifest.Name)
	}
	return
}

func (s *Script) Init(ctx context.Context, t Target) error {
	return s.run(ctx, "init", s.manifest.Init, t)
}

func (s *Script) Halt(ctx context.Context, t Target) error {
	return s.run(ctx, "halt", s.manifest.Halt, t)
}

func (s *Script) Boot(t Target) (string, error) {
	return render(s.manifest.Boot, t)
}

func (s *Script) run(ctx context.Context, hook string, steps []Step, t Target) error {
	for _, step := range steps {
		cmd, err := render(step.Cmd, t)
		if err != nil {
			return fmt.Errorf("brand %s %s: %w", s.manifest.Name, hook, err)
		}
		if !filepath.IsAbs(cmd) && strings.Contains(cmd, "/") {
			cmd = filepath.Join(s.dir, cmd)
		}

		args := make([]string, 0, len(step.Args))
		for _, a := range step.Args {
			arg, err := render(a, t)
			if err != nil {
				return fmt.Errorf("brand %s %s: %w", s.manifest.Name, hook, err)
			}
			args = append(args, arg)
		}

		brandLog.WithFields(logrus.Fields{
			"vm":   t.UUID,
			"args": strings.Join(args, " "),
		}).Debugf("running %s %s hook %s", s.manifest.Name, hook, cmd)
		if _, err := s.runner.Run(ctx, cmd, args...); err != nil {
			return fmt.Errorf("brand %s %s: %w", s.manifest.Name, hook, err)
		}
	}
	return nil
}

func render(text string, t Target) (string, error) {
	tmpl, err := template.New("brand").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Load returns a registry with the built-in brand plus one Script brand for
// every directory under root that holds a manifest. A missing root only
// yields the built-in brand. Brands with a broken manifest are logged and
// skipped, so looking them up fails with ErrUnknownBrand.
func Load(root string, runner tools.Runner) (*Registry, error) {
	r := NewRegistry()

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			brandLog.WithField("root", root).Debug("no brand directory, using built-in brands only")
			return r, nil
		}
		return nil, fmt.Errorf("failed to read brand directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); os.IsNotExist(err) {
			continue
		}

		manifest, err := ReadManifest(dir)
		if err != nil {
			brandLog.WithError(err).WithField("dir", dir).Error("skipping broken brand")
			continue
		}
		r.Register(manifest.Name, NewScript(manifest, dir, runner))
		brandLog.WithField("dir", dir).Debugf("loaded brand %s", manifest.Name)
	}
	return r, nil
}
