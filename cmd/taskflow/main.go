package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskflow"
)

var (
	logPath       string
	checkpointDir string
)

func main() {
	root := &cobra.Command{
		Use:   "taskflow",
		Short: "Run a handful of built-in demo graphs against the taskflow engine.",
	}

	run := &cobra.Command{
		Use:       "run {diamond|pipeline}",
		Short:     "Run a built-in demo graph and print its result.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"diamond", "pipeline"},
		RunE:      runDemo,
	}
	run.Flags().StringVar(&logPath, "log-path", "", "file to write the engine's log stream to (default stderr)")
	run.Flags().StringVar(&checkpointDir, "checkpoint-dir", "", "directory for any checkpoint files the demo writes")

	root.AddCommand(run)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	logw := os.Stderr
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("opening --log-path: %w", err)
		}
		defer f.Close()
		logw = f
	}

	var build taskflow.BuildFunc
	switch args[0] {
	case "diamond":
		build = diamondDemo
	case "pipeline":
		build = pipelineDemo(checkpointDir)
	default:
		return fmt.Errorf("unknown demo %q: want diamond or pipeline", args[0])
	}

	result, err := taskflow.RunGraph(build, taskflow.WithLog(logw))
	if err != nil {
		return err
	}

	fmt.Printf("%v\n", result)
	return nil
}

// diamondDemo builds a diamond dependency: a = 42; b = a/2; c = a*2;
// d = b+c; chain(a, bundle(b, c)); chain(bundle(b, c), d). Expects 105.
func diamondDemo(b *taskflow.Builder) any {
	a := b.CreateTask(func(inputs ...any) (any, error) {
		return 42, nil
	}, taskflow.WithName("a"))

	half := b.CreateTask(func(inputs ...any) (any, error) {
		return inputs[0].(int) / 2, nil
	}, taskflow.WithName("b"))

	double := b.CreateTask(func(inputs ...any) (any, error) {
		return inputs[0].(int) * 2, nil
	}, taskflow.WithName("c"))

	sum := b.CreateTask(func(inputs ...any) (any, error) {
		return inputs[0].(int) + inputs[1].(int), nil
	}, taskflow.WithName("d"))

	bundle := taskflow.Bundle(half, double)
	taskflow.Chain(a, bundle)
	taskflow.Chain(bundle, sum)

	return sum
}

// pipelineDemo chains two subprocess tasks: chain(cmd(["echo","foo"]),
// cmd(["sed","s/o/x/"])). Expects "fxo\n". If dir is non-empty, the
// first stage's checkpoint is written under it.
func pipelineDemo(dir string) taskflow.BuildFunc {
	return func(b *taskflow.Builder) any {
		var opts []taskflow.TaskOption
		opts = append(opts, taskflow.WithName("echo"))
		if dir != "" {
			opts = append(opts, taskflow.WithCheckpoint(filepath.Join(dir, "echo.ckpt")))
		}

		echo := b.CreateCmd([]string{"echo", "foo"}, opts...)
		sed := b.CreateCmd([]string{"sed", "s/o/x/"}, taskflow.WithName("sed"))

		taskflow.Chain(echo, sed)
		return sed
	}
}
