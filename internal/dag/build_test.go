package dag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crateweld/internal/cargoprobe"
	"crateweld/internal/config"
	"crateweld/internal/platform"
	"crateweld/internal/resolver"
	"crateweld/internal/step"
)

func testResolver(p platform.Strategy, existing ...string) *resolver.Resolver {
	dirs := make(map[string]bool, len(existing))
	for _, d := range existing {
		dirs[d] = true
	}
	return &resolver.Resolver{
		Platform:  p,
		Exists:    func(path string) bool { return dirs[path] },
		LookupEnv: func(string) (string, bool) { return "", false },
		LookPath:  func(string) (string, error) { return "", errors.New("not on PATH") },
	}
}

func noManifest(string) (*cargoprobe.Manifest, error) {
	return nil, errors.New("no manifest")
}

// testModel is a one-crate, one-target workspace that subtests mutate.
func testModel(mutate func(*config.Model)) *config.Model {
	m := &config.Model{
		Workspace: &config.Workspace{
			Root:         "/ws",
			BuildDir:     "build",
			BuildToolDir: "build_tool",
		},
		Crates: map[string]*config.Crate{
			"host_bridge": {
				Name:        "host_bridge",
				SourceDir:   "/ws/native",
				ManifestDir: "rust",
			},
		},
		Targets: map[string]*config.Target{
			"app": {
				Name:  "app",
				Crate: "host_bridge",
				Link:  config.LinkPrivate,
			},
		},
	}
	if mutate != nil {
		mutate(m)
	}
	return m
}

func testOptions(r *resolver.Resolver) BuildOptions {
	return BuildOptions{
		Resolver:      r,
		Layout:        resolver.Layout{Platform: r.Platform, BuildDir: "/ws/build"},
		Configuration: "release",
		Triple:        "x86_64-unknown-linux-gnu",
		ProbeManifest: noManifest,
	}
}

func TestBuild(t *testing.T) {
	linux := platform.Posix{GOOS: "linux"}

	t.Run("single crate and target", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		plan, err := Build(context.Background(), testModel(nil), testOptions(r))
		require.NoError(t, err)

		assert.Equal(t, []string{
			"aggregate.app",
			"crate.host_bridge[release]",
			"target.app",
		}, plan.Graph.SortedIDs())
		assert.Equal(t, []step.Kind{step.KindAggregate, step.KindCrateBuild, step.KindHostTarget}, plan.Kinds())

		build := plan.Graph.Nodes["crate.host_bridge[release]"]
		require.NotNil(t, build)
		assert.True(t, build.AlwaysStale)
		bs, ok := build.Step.(*step.Build)
		require.True(t, ok)
		assert.Equal(t, "/ws/native/rust", bs.ManifestDir)
		assert.Equal(t, "/ws/build/release/libhost_bridge.so", bs.ArtifactPath)
		assert.Equal(t, "/ws/build/.tmp/host_bridge/release/stamp", bs.StampPath)
		assert.Equal(t, "/ws/build/.tool", bs.ToolTempDir)
		assert.Equal(t, "/ws", bs.WorkspaceRoot)
		assert.Equal(t, "x86_64-unknown-linux-gnu", bs.Triple)

		deps, err := plan.Graph.Dependencies("aggregate.app")
		require.NoError(t, err)
		assert.Equal(t, []string{"crate.host_bridge[release]"}, deps)

		deps, err = plan.Graph.Dependencies("target.app")
		require.NoError(t, err)
		assert.Equal(t, []string{"aggregate.app"}, deps)

		ls, ok := plan.Graph.Nodes["target.app"].Step.(*step.Link)
		require.True(t, ok)
		require.Len(t, ls.Records, 1)
		assert.Equal(t, "/ws/build/release/host_bridge.link", ls.Records[0].LinkArgsPath)
		assert.Equal(t, config.LinkPrivate, ls.Records[0].Visibility)
		assert.Empty(t, ls.Records[0].RetainDirective)

		require.Len(t, plan.Artifacts, 1)
		assert.Equal(t, Artifact{
			Target:        "app",
			Crate:         "host_bridge",
			Configuration: "release",
			Path:          "/ws/build/release/libhost_bridge.so",
		}, plan.Artifacts[0])
	})

	t.Run("explicit configurations each get a node", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		m := testModel(func(m *config.Model) {
			m.Crates["host_bridge"].Configurations = []string{"debug", "profile"}
		})
		plan, err := Build(context.Background(), m, testOptions(r))
		require.NoError(t, err)

		assert.Contains(t, plan.Graph.Nodes, "crate.host_bridge[debug]")
		assert.Contains(t, plan.Graph.Nodes, "crate.host_bridge[profile]")
		assert.NotContains(t, plan.Graph.Nodes, "crate.host_bridge[release]")

		deps, err := plan.Graph.Dependencies("aggregate.app")
		require.NoError(t, err)
		assert.Equal(t, []string{"crate.host_bridge[debug]", "crate.host_bridge[profile]"}, deps)

		ls := plan.Graph.Nodes["target.app"].Step.(*step.Link)
		assert.Len(t, ls.Records, 2)
		assert.Len(t, plan.Artifacts, 2)
	})

	t.Run("duplicate configuration entries are rejected", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		m := testModel(func(m *config.Model) {
			m.Crates["host_bridge"].Configurations = []string{"release", "release"}
		})
		_, err := Build(context.Background(), m, testOptions(r))
		require.Error(t, err)
		assert.ErrorContains(t, err, "duplicate node id")
	})

	t.Run("library name prefers the explicit attribute", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		m := testModel(func(m *config.Model) {
			m.Crates["host_bridge"].LibraryName = "bridge_core"
		})
		opts := testOptions(r)
		opts.ProbeManifest = func(string) (*cargoprobe.Manifest, error) {
			t.Error("manifest must not be probed when library_name is set")
			return nil, errors.New("unexpected probe")
		}
		plan, err := Build(context.Background(), m, opts)
		require.NoError(t, err)

		bs := plan.Graph.Nodes["crate.host_bridge[release]"].Step.(*step.Build)
		assert.Equal(t, "bridge_core", bs.LibraryName)
		assert.Equal(t, "/ws/build/release/libbridge_core.so", bs.ArtifactPath)
	})

	t.Run("library name falls back to the crate manifest", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		opts := testOptions(r)
		opts.ProbeManifest = func(dir string) (*cargoprobe.Manifest, error) {
			assert.Equal(t, "/ws/native/rust", dir)
			var m cargoprobe.Manifest
			m.Package.Name = "host-bridge"
			return &m, nil
		}
		plan, err := Build(context.Background(), testModel(nil), opts)
		require.NoError(t, err)

		bs := plan.Graph.Nodes["crate.host_bridge[release]"].Step.(*step.Build)
		assert.Equal(t, "host_bridge", bs.LibraryName)
		assert.Equal(t, "/ws/build/release/libhost_bridge.so", bs.ArtifactPath)
	})

	t.Run("windows link records retain the export symbol", func(t *testing.T) {
		win := platform.Windows{}
		r := testResolver(win, `C:\ws\native\rust`)
		m := testModel(func(m *config.Model) {
			m.Workspace.Root = `C:\ws`
			m.Crates["host_bridge"].SourceDir = `C:\ws\native`
			m.Crates["host_bridge"].ExportSymbol = "bridge_init"
		})
		opts := BuildOptions{
			Resolver:      r,
			Layout:        resolver.Layout{Platform: win, BuildDir: `C:\ws\build`},
			Configuration: "release",
			Triple:        "x86_64-pc-windows-msvc",
			ProbeManifest: noManifest,
		}
		plan, err := Build(context.Background(), m, opts)
		require.NoError(t, err)

		bs := plan.Graph.Nodes["crate.host_bridge[release]"].Step.(*step.Build)
		assert.Equal(t, `C:\ws\build\release\host_bridge.dll`, bs.ArtifactPath)
		assert.Equal(t, `C:\ws\build\release\host_bridge.dll.lib`, bs.ImportLibPath)

		ls := plan.Graph.Nodes["target.app"].Step.(*step.Link)
		require.Len(t, ls.Records, 1)
		assert.Equal(t, "/INCLUDE:bridge_init", ls.Records[0].RetainDirective)
		assert.Equal(t, `C:\ws\build\release\host_bridge.dll.lib`, ls.Records[0].ImportLibPath)

		require.Len(t, plan.Artifacts, 1)
		assert.Equal(t, `C:\ws\build\release\host_bridge.dll.lib`, plan.Artifacts[0].ImportLib)
	})

	t.Run("no export symbol means no retain directive", func(t *testing.T) {
		win := platform.Windows{}
		r := testResolver(win, `C:\ws\native\rust`)
		m := testModel(func(m *config.Model) {
			m.Crates["host_bridge"].SourceDir = `C:\ws\native`
		})
		opts := testOptions(r)
		opts.Layout = resolver.Layout{Platform: win, BuildDir: `C:\ws\build`}
		plan, err := Build(context.Background(), m, opts)
		require.NoError(t, err)

		ls := plan.Graph.Nodes["target.app"].Step.(*step.Link)
		require.Len(t, ls.Records, 1)
		assert.Empty(t, ls.Records[0].RetainDirective)
	})

	t.Run("crate without a consuming target gets an always-build aggregate", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		m := testModel(func(m *config.Model) {
			m.Targets = map[string]*config.Target{}
		})
		plan, err := Build(context.Background(), m, testOptions(r))
		require.NoError(t, err)

		agg := plan.Graph.Nodes["aggregate.host_bridge"]
		require.NotNil(t, agg)
		assert.True(t, agg.AlwaysBuild)

		deps, err := plan.Graph.Dependencies("aggregate.host_bridge")
		require.NoError(t, err)
		assert.Equal(t, []string{"crate.host_bridge[release]"}, deps)

		require.Len(t, plan.Artifacts, 1)
		assert.Empty(t, plan.Artifacts[0].Target)
	})

	t.Run("depends_on connects build steps of the same configuration", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		m := testModel(func(m *config.Model) {
			m.Crates["codec"] = &config.Crate{
				Name:        "codec",
				SourceDir:   "/ws/native",
				ManifestDir: "rust",
			}
			m.Crates["host_bridge"].DependsOn = []string{"crate.codec"}
		})
		plan, err := Build(context.Background(), m, testOptions(r))
		require.NoError(t, err)

		deps, err := plan.Graph.Dependencies("crate.host_bridge[release]")
		require.NoError(t, err)
		assert.Equal(t, []string{"crate.codec[release]"}, deps)
	})

	t.Run("depends_on requires the dependency to build the configuration", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		m := testModel(func(m *config.Model) {
			m.Crates["codec"] = &config.Crate{
				Name:           "codec",
				SourceDir:      "/ws/native",
				ManifestDir:    "rust",
				Configurations: []string{"debug"},
			}
			m.Crates["host_bridge"].DependsOn = []string{"crate.codec"}
		})
		_, err := Build(context.Background(), m, testOptions(r))
		require.Error(t, err)
		assert.ErrorContains(t, err, `does not build configuration "release"`)
	})

	t.Run("an active configuration is required", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		opts := testOptions(r)
		opts.Configuration = ""
		_, err := Build(context.Background(), testModel(nil), opts)
		assert.ErrorContains(t, err, "no active configuration")
	})

	t.Run("missing manifest directory is advisory", func(t *testing.T) {
		r := testResolver(linux) // nothing exists on disk
		plan, err := Build(context.Background(), testModel(nil), testOptions(r))
		require.NoError(t, err)

		bs := plan.Graph.Nodes["crate.host_bridge[release]"].Step.(*step.Build)
		assert.Equal(t, "/ws/native/rust", bs.ManifestDir)
	})

	t.Run("unresolved toolchain root is not fatal", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		plan, err := Build(context.Background(), testModel(nil), testOptions(r))
		require.NoError(t, err)

		bs := plan.Graph.Nodes["crate.host_bridge[release]"].Step.(*step.Build)
		assert.Empty(t, bs.ToolchainRoot)
		assert.NotEmpty(t, plan.Probes)
	})

	t.Run("toolchain root flows into build steps and probes", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		r.LookupEnv = func(name string) (string, bool) {
			if name == "RUST_SDK_ROOT" {
				return "/opt/rust-sdk", true
			}
			return "", false
		}
		m := testModel(func(m *config.Model) {
			m.Workspace.SDK = &config.SDK{EnvVar: "RUST_SDK_ROOT"}
		})
		plan, err := Build(context.Background(), m, testOptions(r))
		require.NoError(t, err)

		bs := plan.Graph.Nodes["crate.host_bridge[release]"].Step.(*step.Build)
		assert.Equal(t, "/opt/rust-sdk", bs.ToolchainRoot)

		var hit *resolver.Probe
		for i := range plan.Probes {
			if plan.Probes[i].Hit {
				hit = &plan.Probes[i]
			}
		}
		require.NotNil(t, hit)
		assert.Equal(t, resolver.ProbeEnv, hit.Source)
		assert.Equal(t, "/opt/rust-sdk", hit.Value)
	})

	t.Run("explicit override wins over every probe", func(t *testing.T) {
		r := testResolver(linux, "/ws/native/rust")
		r.LookupEnv = func(string) (string, bool) { return "/from-env", true }
		opts := testOptions(r)
		opts.SDKOverride = "/custom/sdk"
		plan, err := Build(context.Background(), testModel(nil), opts)
		require.NoError(t, err)

		bs := plan.Graph.Nodes["crate.host_bridge[release]"].Step.(*step.Build)
		assert.Equal(t, "/custom/sdk", bs.ToolchainRoot)
	})
}
