package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/lixenwraith/folio-motion/config"
	"github.com/lixenwraith/folio-motion/prefs"
	"github.com/lixenwraith/folio-motion/registry"
	"github.com/lixenwraith/folio-motion/scheduler"
)

// execute runs the root command against a config file in a temp dir
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FOLIO_STORE_PATH", filepath.Join(dir, "prefs.db"))

	listPage, listEngine, listTrigger, listLimit = "", "", "", 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(dir, "config.yaml")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalogStats(t *testing.T) {
	out, err := execute(t, "catalog", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:")
	assert.Contains(t, out, "Pages:")
	assert.Contains(t, out, registry.PageHome)
}

func TestCatalogShow(t *testing.T) {
	out, err := execute(t, "catalog", "show", "hero_enter")
	require.NoError(t, err)
	assert.Contains(t, out, "id: hero_enter")
	assert.Contains(t, out, "page: home")

	_, err = execute(t, "catalog", "show", "no_such_animation")
	assert.Error(t, err)
}

func TestCatalogListFilters(t *testing.T) {
	out, err := execute(t, "catalog", "list", "--page", "home", "--trigger", "load")
	require.NoError(t, err)
	assert.Contains(t, out, "hero_enter")
	assert.NotContains(t, out, "projects")

	_, err = execute(t, "catalog", "list", "--engine", "flash")
	assert.Error(t, err)
}

func TestFilterEntries(t *testing.T) {
	all := []registry.Descriptor{
		{ID: "a", Page: "home", Engine: registry.EngineCSS, Trigger: registry.TriggerHover},
		{ID: "b", Page: "home", Engine: registry.EngineMotion, Trigger: registry.TriggerLoad},
		{ID: "c", Page: "about", Engine: registry.EngineMotion, Trigger: registry.TriggerLoad},
	}
	got := filterEntries(all, "home", "", "")
	assert.Len(t, got, 2)
	got = filterEntries(all, "", registry.EngineMotion, registry.TriggerLoad)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Len(t, all, 3, "filter must not modify its input")
}

func TestLowPowerPersists(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FOLIO_STORE_PATH", filepath.Join(dir, "prefs.db"))

	run := func(args ...string) string {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append(args, "--config", filepath.Join(dir, "config.yaml")))
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	assert.Contains(t, run("lowpower"), "low-power mode: off")
	assert.Contains(t, run("lowpower", "on"), "low-power mode: on")
	assert.Contains(t, run("lowpower"), "low-power mode: on")
	assert.Contains(t, run("lowpower", "off"), "low-power mode: off")

	rootCmd.SetArgs([]string{"lowpower", "maybe", "--config", filepath.Join(dir, "config.yaml")})
	assert.Error(t, rootCmd.Execute())
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	c := config.DefaultConfig()
	c.StorePath = filepath.Join(dir, "prefs.db")
	c.PrefsFile = filepath.Join(dir, "prefs.yaml")
	c.LogFile = ""
	c.Audio.Enabled = false
	c.Catalog.Seed = 3
	return c
}

func simScreen() (tcell.Screen, error) {
	s := tcell.NewSimulationScreen("UTF-8")
	s.SetSize(100, 30)
	return s, nil
}

func testApp(t *testing.T) *app {
	t.Helper()
	cfg = testConfig(t)
	a, err := newApp(cfg, zap.NewNop(), loadCatalog(), simScreen)
	require.NoError(t, err)
	return a
}

func TestAppLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	a := testApp(t)

	require.NoError(t, a.start(context.Background()))
	assert.Equal(t, []string{svcAudio, svcController, svcPrefs, svcStore, svcScheduler, svcHost}, a.hub.Order())
	require.NotNil(t, a.host)
	assert.Equal(t, registry.PageHome, a.host.Page().Key)
	assert.True(t, a.player.Silent())
	assert.False(t, a.sched.LowPowerMode())

	a.stop()
	assert.Zero(t, a.scenes.RendererCount())
}

func TestAppReadsPersistedLowPower(t *testing.T) {
	a := testApp(t)
	require.NoError(t, a.start(context.Background()))
	require.NoError(t, a.sched.SetLowPowerMode(true))
	a.stop()

	b, err := newApp(a.cfg, zap.NewNop(), loadCatalog(), simScreen)
	require.NoError(t, err)
	require.NoError(t, b.start(context.Background()))
	defer b.stop()
	assert.True(t, b.sched.LowPowerMode())
}

func TestAppStartsWithReducedMotionFromFile(t *testing.T) {
	cfg = testConfig(t)
	require.NoError(t, prefs.WriteFile(cfg.PrefsFile, prefs.File{ReducedMotion: true}))
	a, err := newApp(cfg, zap.NewNop(), loadCatalog(), simScreen)
	require.NoError(t, err)
	require.NoError(t, a.start(context.Background()))
	defer a.stop()

	assert.True(t, a.reduced.Active())
	assert.False(t, a.sched.Paused())
	assert.Zero(t, a.sched.Len(), "home load animations run at mount")

	loads := 0
	for _, d := range a.catalog.ByPage(registry.PageHome) {
		if d.Trigger == registry.TriggerLoad {
			loads++
		}
	}
	require.Positive(t, loads)
	assert.GreaterOrEqual(t, a.status.Ints.Get("controller.plays").Load(), int64(loads))

	ran := false
	a.sched.Schedule("critical", func() { ran = true }, 0, scheduler.PriorityCritical)
	a.sched.Update()
	assert.True(t, ran)
}

func TestAppRunEndsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	a := testApp(t)
	require.NoError(t, a.start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	a.stop()
}
