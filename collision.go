// Package polysoup collides moving convex shapes against static polygon soups.
//
// A StaticBody indexes the faces of a mesh instance in a SpatialGrid. CollidePair
// runs one convex-versus-mesh query: it builds a meshcollide.Descriptor, gathers
// candidate faces from the grid, sorts them by hit distance and generates contacts
// face by face, nearest first. NarrowPhase and Scene run many queries on a pool of
// goroutines.
package polysoup

import (
	"sync"

	"github.com/akmonengine/polysoup/actor"
	"github.com/akmonengine/polysoup/contact"
	"github.com/akmonengine/polysoup/meshcollide"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const DEFAULT_WORKERS = 1

// StaticBody is a placed static mesh with its face grid
type StaticBody struct {
	Instance *actor.MeshInstance
	Grid     *SpatialGrid
}

// NewStaticBody indexes the mesh of instance in a new grid
func NewStaticBody(instance *actor.MeshInstance, cellSize float64, numCells int) (*StaticBody, error) {
	if instance == nil || instance.Mesh == nil {
		return nil, errors.New("static body needs a mesh instance")
	}
	if !(cellSize > 0) {
		return nil, errors.Errorf("grid cell size must be positive, got %v", cellSize)
	}

	grid := NewSpatialGrid(cellSize, numCells)
	grid.Build(instance.Mesh)

	return &StaticBody{Instance: instance, Grid: grid}, nil
}

// Pair is one convex-versus-mesh query handed over by a broad phase
type Pair struct {
	ID            int
	Convex        *actor.ConvexInstance
	Static        *StaticBody
	SkinThickness float64
	Continuous    bool
	// Displacement is the world space motion of the convex shape over the step
	Displacement mgl64.Vec3
}

// Options tune contact generation
type Options struct {
	SortThreshold      int
	MaxContactsPerFace int
}

func DefaultOptions() Options {
	return Options{
		SortThreshold:      meshcollide.DefaultSortThreshold,
		MaxContactsPerFace: contact.DefaultMaxPoints,
	}
}

// Result is the outcome of one pair. A rejected pair has an error and no contacts.
type Result struct {
	Pair     Pair
	Contacts []contact.FaceContact
	Err      error
}

// CollidePair runs the query of p and returns one FaceContact per touching face,
// nearest face first. Continuous queries stop at the earliest time of impact.
func CollidePair(p Pair, opts Options) ([]contact.FaceContact, error) {
	if p.Static == nil || p.Static.Grid == nil || p.Static.Instance == nil {
		return nil, errors.Wrap(meshcollide.ErrInvalidQuery, "pair without a static body")
	}

	d := meshcollide.Acquire()
	defer meshcollide.Release(d)

	instance := p.Static.Instance
	err := meshcollide.Build(d, p.Convex, instance, meshcollide.QueryParams{
		SkinThickness: p.SkinThickness,
		Continuous:    p.Continuous,
		Displacement:  p.Displacement,
	})
	if err != nil {
		return nil, err
	}

	mesh := instance.Mesh
	if err := p.Static.Grid.Query(d, mesh); err != nil {
		return nil, err
	}
	d.SortFacesThreshold(opts.SortThreshold)

	world := instance.ScaledMatrix()
	var contacts []contact.FaceContact

	for i := 0; i < d.FaceCount(); i++ {
		c := d.Candidate(i)

		// candidates are sorted, nothing farther can touch
		if d.Continuous && c.HitDistance > d.MaxT {
			break
		}
		if !d.Continuous && c.HitDistance > d.SkinThickness {
			break
		}

		points, plane, err := meshcollide.FaceContacts(d, p.Convex, mesh, c, nil)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			continue
		}

		worldPlane := plane.Transform(world)
		for j := range points {
			points[j].Position = actor.TransformPoint(world, points[j].Position)
			points[j].Penetration = -worldPlane.Evaluate(points[j].Position)
		}
		if opts.MaxContactsPerFace > 0 {
			points = contact.Reduce(points, worldPlane.Normal, opts.MaxContactsPerFace)
		}

		face, _ := mesh.FaceAt(c.IndexStart)
		contacts = append(contacts, contact.FaceContact{
			Face:        face,
			HitDistance: c.HitDistance,
			Plane:       plane,
			Normal:      worldPlane.Normal,
			Points:      points,
		})

		if d.Continuous {
			d.SetMaxT(c.HitDistance)
		}
	}

	return contacts, nil
}

// NarrowPhase runs every pair of the channel on workersCount goroutines. Results
// come back in completion order.
func NarrowPhase(pairs <-chan Pair, workersCount int, opts Options) []Result {
	workersCount = max(DEFAULT_WORKERS, workersCount)
	resultsChan := make(chan Result, workersCount*2)

	go func() {
		var wg sync.WaitGroup
		defer close(resultsChan)

		for w := 0; w < workersCount; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for p := range pairs {
					contacts, err := CollidePair(p, opts)
					resultsChan <- Result{Pair: p, Contacts: contacts, Err: err}
				}
			}()
		}

		wg.Wait()
	}()

	results := make([]Result, 0)
	for r := range resultsChan {
		results = append(results, r)
	}
	return results
}
