package polysoup

import (
	"math"
	"sort"

	"github.com/akmonengine/polysoup/actor"
	"github.com/akmonengine/polysoup/config"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Scene holds static meshes and moving convex shapes and collides them in batches.
// The zero Scene is usable: it collides with zero skin thickness and no logging.
// AddStatic needs the grid settings that NewScene provides.
type Scene struct {
	Statics  []*StaticBody
	Convexes []*actor.ConvexInstance
	Workers  int

	Events Events

	query  config.QueryConfig
	grid   config.GridConfig
	logger *zap.Logger
}

// NewScene creates an empty scene. A nil cfg uses config.Default and a nil logger
// discards everything.
func NewScene(cfg *config.Config, logger *zap.Logger) *Scene {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scene{
		Workers: cfg.Workers,
		Events:  NewEvents(),
		query:   cfg.Query,
		grid:    cfg.Grid,
		logger:  logger,
	}
}

func (s *Scene) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// AddStatic indexes a mesh instance and adds it to the scene
func (s *Scene) AddStatic(instance *actor.MeshInstance) (*StaticBody, error) {
	body, err := NewStaticBody(instance, s.grid.CellSize, s.grid.NumCells)
	if err != nil {
		return nil, err
	}
	s.Statics = append(s.Statics, body)

	s.log().Debug("static mesh added",
		zap.Int("faces", instance.Mesh.FaceCount()),
		zap.Stringer("scale", instance.ScaleMode()),
	)
	return body, nil
}

// AddConvex adds a moving convex shape to the scene
func (s *Scene) AddConvex(convex *actor.ConvexInstance) {
	s.Convexes = append(s.Convexes, convex)
}

// RemoveConvex removes a convex shape from the scene
func (s *Scene) RemoveConvex(convex *actor.ConvexInstance) {
	k := -1
	for i, c := range s.Convexes {
		if c == convex {
			k = i
			break
		}
	}

	if k != -1 {
		s.Convexes = append(s.Convexes[:k], s.Convexes[k+1:]...)
	}

	s.Events.forget(convex)
}

// Collide runs one batch of queries over a step of dt seconds. Each convex shape is
// paired with every static body its world box, swept by Velocity*dt when queries
// are continuous, overlaps. Results are ordered by pair ID. Rejected pairs are
// logged, kept in the results with their error, and aggregated in the returned
// error. Contact events are dispatched before Collide returns.
func (s *Scene) Collide(dt float64) ([]Result, error) {
	s.Workers = max(DEFAULT_WORKERS, s.Workers)

	boxes := make([]actor.AABB, len(s.Convexes))
	task(s.Workers, s.Convexes, func(i int, convex *actor.ConvexInstance) {
		box := convex.WorldAABB()
		if s.query.Continuous {
			box = box.Sweep(convex.Velocity.Mul(dt))
		}
		boxes[i] = box
	})

	pairs := make(chan Pair, s.Workers*2)
	go func() {
		defer close(pairs)
		s.broadPhase(boxes, dt, pairs)
	}()

	results := NarrowPhase(pairs, s.Workers, Options{
		SortThreshold:      s.query.SortThreshold,
		MaxContactsPerFace: s.query.MaxContactsPerFace,
	})
	sort.Slice(results, func(i, j int) bool {
		return results[i].Pair.ID < results[j].Pair.ID
	})

	var err error
	contacts := 0
	for _, r := range results {
		if r.Err != nil {
			s.log().Warn("pair rejected",
				zap.Int("pair", r.Pair.ID),
				zap.Error(r.Err),
			)
			err = multierr.Append(err, errors.Wrapf(r.Err, "pair %d", r.Pair.ID))
			continue
		}
		contacts += len(r.Contacts)
	}

	s.Events.recordResults(results)
	s.Events.flush()

	s.log().Debug("collide",
		zap.Int("pairs", len(results)),
		zap.Int("faceContacts", contacts),
	)
	return results, err
}

// broadPhase emits a pair for every convex box overlapping a static world box.
// Boxes are grown by the skin thickness measured in world units.
func (s *Scene) broadPhase(boxes []actor.AABB, dt float64, pairs chan<- Pair) {
	staticBoxes := make([]actor.AABB, len(s.Statics))
	margins := make([]float64, len(s.Statics))
	for j, body := range s.Statics {
		staticBoxes[j] = body.Instance.WorldAABB()
		scale := body.Instance.Scale()
		margins[j] = s.query.SkinThickness * math.Max(math.Abs(scale[0]), math.Max(math.Abs(scale[1]), math.Abs(scale[2])))
	}

	for i, convex := range s.Convexes {
		for j, body := range s.Statics {
			if !boxes[i].Expand(margins[j]).Overlaps(staticBoxes[j]) {
				continue
			}

			p := Pair{
				ID:            i*len(s.Statics) + j,
				Convex:        convex,
				Static:        body,
				SkinThickness: s.query.SkinThickness,
				Continuous:    s.query.Continuous,
			}
			if p.Continuous {
				p.Displacement = convex.Velocity.Mul(dt)
			}
			pairs <- p
		}
	}
}
