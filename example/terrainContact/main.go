package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/akmonengine/polysoup"
	"github.com/akmonengine/polysoup/actor"
	"github.com/akmonengine/polysoup/config"
	"github.com/akmonengine/polysoup/internal/logger"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// buildTerrain creates a gently rolling heightfield of n x n quads, two triangles each.
// Vertices carry a fourth scalar, the height, as a user attribute.
func buildTerrain(n int, cell float64) (*actor.StaticMesh, error) {
	const stride = 4
	half := float64(n) * cell / 2
	vertices := make([]float64, 0, (n+1)*(n+1)*stride)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			x := float64(i)*cell - half
			y := float64(j)*cell - half
			z := 0.25 * math.Sin(x*0.5) * math.Cos(y*0.5)
			vertices = append(vertices, x, y, z, z)
		}
	}

	index := func(i, j int) int32 { return int32(j*(n+1) + i) }
	indices := make([]int32, 0, n*n*6)
	counts := make([]int, 0, n*n*2)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v00, v10, v01, v11 := index(i, j), index(i+1, j), index(i, j+1), index(i+1, j+1)
			indices = append(indices, v00, v10, v11, v00, v11, v01)
			counts = append(counts, 3, 3)
		}
	}

	return actor.NewStaticMesh(vertices, stride, indices, counts)
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	steps := flag.Int("steps", 90, "number of steps to simulate")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, logger.DefaultFileConfig(cfg.Logging.LogFile), true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	mesh, err := buildTerrain(32, 1.0)
	if err != nil {
		log.Fatal("terrain", zap.Error(err))
	}

	scene := polysoup.NewScene(cfg, log)
	terrain := actor.NewMeshInstance(mesh, actor.NewTransform())
	if err := terrain.SetScale(mgl64.Vec3{2, 2, 1}); err != nil {
		log.Fatal("terrain scale", zap.Error(err))
	}
	if _, err := scene.AddStatic(terrain); err != nil {
		log.Fatal("add terrain", zap.Error(err))
	}

	box, _ := actor.NewBox(mgl64.Vec3{0.5, 0.5, 0.5})
	cube := actor.NewConvexInstance(box, actor.Transform{Position: mgl64.Vec3{3, -2, 4}, Rotation: mgl64.QuatRotate(0.3, mgl64.Vec3{1, 1, 0}.Normalize())})
	ball := actor.NewConvexInstance(&actor.Sphere{Radius: 0.75}, actor.Transform{Position: mgl64.Vec3{-5, 6, 6}, Rotation: mgl64.QuatIdent()})
	scene.AddConvex(cube)
	scene.AddConvex(ball)

	scene.Events.Subscribe(polysoup.CONTACT_ENTER, func(event polysoup.Event) {
		e := event.(polysoup.ContactEnterEvent)
		log.Info("contact enter",
			zap.Stringer("position", vec(e.Convex.Transform.Position)),
			zap.Int("faces", len(e.Contacts)),
		)
	})

	gravity := mgl64.Vec3{0, 0, -9.81}
	dt := 1.0 / 60
	for step := 0; step < *steps; step++ {
		for _, c := range scene.Convexes {
			c.Velocity = c.Velocity.Add(gravity.Mul(dt))
		}

		results, err := scene.Collide(dt)
		if err != nil {
			log.Warn("collide", zap.Error(err))
		}

		touching := make(map[*actor.ConvexInstance]bool)
		for _, r := range results {
			for _, fc := range r.Contacts {
				// push out along the face normal and stop the motion
				if depth := fc.MaxPenetration(); depth > 0 {
					r.Pair.Convex.Transform.Position = r.Pair.Convex.Transform.Position.Add(fc.Normal.Mul(depth))
				}
				touching[r.Pair.Convex] = true
			}
		}

		for _, c := range scene.Convexes {
			if touching[c] {
				c.Velocity = mgl64.Vec3{}
				continue
			}
			c.Transform.Position = c.Transform.Position.Add(c.Velocity.Mul(dt))
		}
	}

	for i, c := range scene.Convexes {
		log.Info("final", zap.Int("body", i), zap.Stringer("position", vec(c.Transform.Position)))
	}
}

type vec mgl64.Vec3

func (v vec) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v[0], v[1], v[2])
}
