package builtin

import (
	"context"
	"fmt"
	"image"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/raster"
	"github.com/osumercury/badgemaker/pkg/render"
	"github.com/osumercury/badgemaker/pkg/render/script"
)

func TestRegistry(t *testing.T) {
	reg := Registry()
	if got, want := reg.Names(), []string{"certificate", "classic", "script"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}

	env := render.Env{Logger: log.New(io.Discard)}
	for _, name := range reg.Names() {
		r, err := reg.New(name, env)
		if err != nil {
			t.Fatalf("New(%s): %v", name, err)
		}
		if r.Name() != name {
			t.Errorf("New(%s).Name() = %s", name, r.Name())
		}
		if len(r.ListProperties()) == 0 {
			t.Errorf("%s declares no properties", name)
		}
	}

	if !reg.Has(DefaultRenderer) {
		t.Errorf("default renderer %q not registered", DefaultRenderer)
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	reg := Registry()
	env := render.Env{Logger: log.New(io.Discard)}
	a, _ := reg.New("classic", env)
	b, _ := reg.New("classic", env)

	if err := a.SetProperty("primary-height", "0.3"); err != nil {
		t.Fatal(err)
	}
	if v, _ := b.GetProperty("primary-height"); v.Float() != 0.15 {
		t.Errorf("second instance primary-height = %v, want default", v)
	}
}

func TestConcurrentRender(t *testing.T) {
	const workers = 8
	ctx := context.Background()
	reg := Registry()
	env := render.Env{Logger: log.New(io.Discard)}

	badges := make([]*badge.Badge, workers)
	for i := range badges {
		b := badge.New(i+1, fmt.Sprintf("Team %d", i+1), "OSU")
		b.SetSize(1, 1.25, 40)
		if i%2 == 0 {
			b.Background = raster.NewCanvas(8, 8, b.TextBackgroundColor).Image()
		}
		badges[i] = b
	}

	for _, name := range reg.Names() {
		t.Run(name, func(t *testing.T) {
			r, err := reg.New(name, env)
			if err != nil {
				t.Fatal(err)
			}
			if s, ok := r.(*script.Renderer); ok {
				s.SetScript([]string{
					"poly fill textbg 0,0 100,0 100,20 0,20",
					"primarytext text sans bold centered 50 60 15 center",
					"number 000000 sans plain left 2 10 8",
					"blit bg height 30 centered centered",
				}, "")
			}
			cached := render.NewCached(r)

			// Serial renders are the reference for the parallel ones.
			want := make([]string, workers)
			for i, b := range badges {
				want[i] = raster.Digest(r.Render(ctx, b))
			}

			var wg sync.WaitGroup
			direct := make([]image.Image, workers)
			viaCache := make([]image.Image, workers)
			for i, b := range badges {
				i, b := i, b
				wg.Add(2)
				go func() {
					defer wg.Done()
					direct[i] = r.Render(ctx, b)
				}()
				go func() {
					defer wg.Done()
					viaCache[i], _, _ = cached.RenderCached(ctx, b)
				}()
			}
			wg.Wait()

			for i := range badges {
				if got := raster.Digest(direct[i]); got != want[i] {
					t.Errorf("badge %d: parallel render differs from serial render", i+1)
				}
				if got := raster.Digest(viaCache[i]); got != want[i] {
					t.Errorf("badge %d: cached render differs from serial render", i+1)
				}
			}
		})
	}
}
