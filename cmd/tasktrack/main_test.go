package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"tasktrack": func() { os.Exit(run()) },
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata/script",
		Setup: setupScriptEnv,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"envset": cmdEnvSet,
		},
	})
}

// setupScriptEnv keeps every file tasktrack touches inside the script's
// work directory. The SQLite file persists state between commands.
func setupScriptEnv(env *testscript.Env) error {
	home := filepath.Join(env.WorkDir, "home")
	if err := os.MkdirAll(home, 0755); err != nil {
		return err
	}
	env.Setenv("HOME", home)
	env.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	env.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	env.Setenv("TASKTRACK_DB", filepath.Join(env.WorkDir, "tasks.db"))
	env.Setenv("TASKTRACK_BACKEND", "")
	env.Setenv("TASKTRACK_DSN", "")
	return nil
}

// cmdEnvSet sets an environment variable to the trimmed contents of a file:
//
//	envset NAME file
func cmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! envset")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset NAME file")
	}
	ts.Setenv(args[0], strings.TrimSpace(ts.ReadFile(args[1])))
}
