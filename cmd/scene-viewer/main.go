// Command scene-viewer loads a scene file and runs it in a window with the
// debug tools open.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/plus3/sceneworld/ecs"
	"github.com/plus3/sceneworld/ecs/components"
	"github.com/plus3/sceneworld/ecs/debugui"
	debugui_ebiten "github.com/plus3/sceneworld/ecs/debugui/ebiten"
	"github.com/plus3/sceneworld/ecs/scene"
	"github.com/plus3/sceneworld/internal/config"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "Path to a TOML config file.")
	save := flag.String("save", "", "Write the scene here when the window closes.")
	paused := flag.Bool("paused", false, "Start with logic frozen.")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scene-viewer [flags] <scene.yaml>")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(flag.Arg(0), *save, *paused, log); err != nil {
		log.Fatal("scene viewer failed", zap.Error(err))
	}
}

func run(path, savePath string, paused bool, log *zap.Logger) error {
	registry := ecs.NewRegistry()
	components.Register(registry)
	codec := scene.NewCodec(registry, log)

	world := ecs.NewWorld(ecs.WithLogger(log))
	roots, err := codec.LoadFile(path, world)
	if err != nil {
		return eris.Wrapf(err, "failed to load %s", path)
	}
	world.Tick(0)
	log.Info("loaded scene", zap.String("path", path), zap.Int("roots", len(roots)), zap.Int("entities", world.EntityCount()))

	if paused {
		world.FreezeLogic()
	}

	backend := debugui_ebiten.NewImguiBackend("Scene Viewer - "+path, 1280, 720)
	scheduler := ecs.NewScheduler(world)
	items, _ := debugui.Install(world, scheduler)
	world.AddRenderSystem(NewSpriteRenderer(world, items))

	game := debugui_ebiten.NewGame(backend, world, scheduler)
	if err := game.Run(); err != nil {
		return eris.Wrap(err, "game loop failed")
	}

	if savePath != "" {
		if err := codec.SaveFile(world, savePath); err != nil {
			return err
		}
		log.Info("saved scene", zap.String("path", savePath))
	}
	return nil
}
