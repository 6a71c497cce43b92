// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package ref_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/metaprop/pkg/iface"
	"github.com/holomush/metaprop/pkg/ref"
)

type surface interface {
	iface.Interface
	Width() int
}

type labelled interface {
	iface.Interface
	Label() string
}

type unsupported interface {
	iface.Interface
	Frob()
}

var (
	surfaceUID     = iface.MustUID("01HZY00000000000000SVRFACE")
	labelledUID    = iface.MustUID("01HZY00000000000000000TEXT")
	unsupportedUID = iface.MustUID("01HZY000000000000000NNSVPP")
)

func init() {
	iface.RegisterUID[unsupported](unsupportedUID)
}

// caption is exposed by window as a separate sub-object.
type caption struct {
	text string
}

var captionTable = iface.NewTable(
	iface.Introduce(labelledUID, func(c *caption) labelled { return c }),
)

func (c *caption) GetInterface(uid iface.UID) iface.Interface { return captionTable.Lookup(c, uid) }
func (c *caption) Label() string                             { return c.text }

type window struct {
	width   int
	caption *caption
	closed  int
}

var windowTable = iface.NewTable(
	iface.Introduce(surfaceUID, func(w *window) surface { return w }),
	iface.Introduce(labelledUID, func(w *window) labelled { return w.caption }),
)

func (w *window) GetInterface(uid iface.UID) iface.Interface { return windowTable.Lookup(w, uid) }
func (w *window) Width() int                                { return w.width }
func (w *window) Close() error {
	w.closed++
	return nil
}

func newWindow() *window {
	return &window{width: 640, caption: &caption{text: "main"}}
}

var _ = Describe("Ptr", func() {
	It("destroys the object exactly when the last strong reference goes", func() {
		deleted := 0
		p := ref.NewWithDeleter(newWindow(), func(*window) { deleted++ })
		q := p.Clone()
		Expect(p.UseCount()).To(Equal(int64(2)))

		p.Reset()
		Expect(deleted).To(Equal(0))
		Expect(p.IsNil()).To(BeTrue())

		q.Reset()
		Expect(deleted).To(Equal(1))
	})

	It("closes io.Closer values by default", func() {
		w := newWindow()
		p := ref.New(w)
		p.Reset()
		Expect(w.closed).To(Equal(1))
	})

	It("yields an empty Ptr for nil values", func() {
		var w *window
		p := ref.New(w)
		Expect(p.IsNil()).To(BeTrue())
		Expect(p.UseCount()).To(Equal(int64(0)))
	})

	It("releases the control block only after strong and weak references are gone", func() {
		released := 0
		p := ref.New(newWindow(), ref.WithRelease[*window](func() { released++ }))
		w := ref.MakeWeak(p)

		p.Reset()
		Expect(released).To(Equal(0))
		w.Reset()
		Expect(released).To(Equal(1))
	})

	It("keeps counts race free under concurrent clone and reset", func() {
		deleted := 0
		p := ref.NewWithDeleter(newWindow(), func(*window) { deleted++ })

		var wg sync.WaitGroup
		for range 32 {
			wg.Add(1)
			go func(local ref.Ptr[*window]) {
				defer wg.Done()
				for range 100 {
					c := local.Clone()
					c.Reset()
				}
				local.Reset()
			}(p.Clone())
		}
		wg.Wait()

		Expect(p.UseCount()).To(Equal(int64(1)))
		p.Reset()
		Expect(deleted).To(Equal(1))
	})

	Describe("Alias", func() {
		It("shares lifetime while pointing elsewhere", func() {
			deleted := 0
			w := newWindow()
			p := ref.NewWithDeleter(w, func(*window) { deleted++ })

			c := ref.Alias(p, w.caption)
			Expect(c.Get()).To(BeIdenticalTo(w.caption))
			Expect(c.SharesOwnership(p)).To(BeTrue())
			Expect(p.UseCount()).To(Equal(int64(2)))

			p.Reset()
			Expect(deleted).To(Equal(0))
			c.Reset()
			Expect(deleted).To(Equal(1))
		})

		It("aliases to empty for a nil pointer", func() {
			p := ref.New(newWindow())
			var none *caption
			c := ref.Alias(p, none)
			Expect(c.IsNil()).To(BeTrue())
			Expect(p.UseCount()).To(Equal(int64(1)))
		})
	})

	Describe("Cast", func() {
		It("aliases directly when the value already satisfies the target", func() {
			w := newWindow()
			p := ref.New(w)
			s := ref.Cast[surface](p)
			Expect(s.IsNil()).To(BeFalse())
			Expect(s.Get().Width()).To(Equal(640))
			Expect(s.SharesOwnership(p)).To(BeTrue())
		})

		It("goes through GetInterface for a sub-object interface", func() {
			w := newWindow()
			p := ref.New(w)
			l := ref.Cast[labelled](p)
			Expect(l.IsNil()).To(BeFalse())
			Expect(l.Get()).To(BeIdenticalTo(labelled(w.caption)))
			Expect(l.SharesOwnership(p)).To(BeTrue())
			Expect(p.UseCount()).To(Equal(int64(2)))
		})

		It("yields empty on an incompatible interface and leaves the source alone", func() {
			p := ref.New(newWindow())
			u := ref.Cast[unsupported](p)
			Expect(u.IsNil()).To(BeTrue())
			Expect(p.IsNil()).To(BeFalse())
			Expect(p.UseCount()).To(Equal(int64(1)))
		})

		It("clears the source when a move cast fails", func() {
			deleted := 0
			p := ref.NewWithDeleter(newWindow(), func(*window) { deleted++ })
			u := ref.CastMove[unsupported](&p)
			Expect(u.IsNil()).To(BeTrue())
			Expect(p.IsNil()).To(BeTrue())
			Expect(deleted).To(Equal(1))
		})

		It("transfers ownership on a successful move cast", func() {
			deleted := 0
			p := ref.NewWithDeleter(newWindow(), func(*window) { deleted++ })
			s := ref.CastMove[surface](&p)
			Expect(p.IsNil()).To(BeTrue())
			Expect(s.UseCount()).To(Equal(int64(1)))
			s.Reset()
			Expect(deleted).To(Equal(1))
		})
	})
})

var _ = Describe("Weak", func() {
	It("locks while the object is alive", func() {
		p := ref.New(newWindow())
		w := ref.MakeWeak(p)
		Expect(p.WeakCount()).To(Equal(int64(1)))

		locked := w.Lock()
		Expect(locked.IsNil()).To(BeFalse())
		Expect(p.UseCount()).To(Equal(int64(2)))
		locked.Reset()
	})

	It("never resurrects after the strong references are gone", func() {
		p := ref.New(newWindow())
		w := ref.MakeWeak(p)
		p.Reset()

		Expect(w.Expired()).To(BeTrue())
		Expect(w.Lock().IsNil()).To(BeTrue())
	})

	It("reports only external weak observers", func() {
		p := ref.New(newWindow())
		Expect(p.WeakCount()).To(Equal(int64(0)))

		w1 := ref.MakeWeak(p)
		w2 := w1.Clone()
		Expect(p.WeakCount()).To(Equal(int64(2)))

		w1.Reset()
		w2.Reset()
		Expect(p.WeakCount()).To(Equal(int64(0)))
	})

	DescribeTable("lock fails for every destruction order",
		func(order []string) {
			deleted := 0
			p := ref.NewWithDeleter(newWindow(), func(*window) { deleted++ })
			q := p.Clone()
			w := ref.MakeWeak(p)
			w2 := w.Clone()
			handles := map[string]func(){
				"p":  p.Reset,
				"q":  q.Reset,
				"w2": w2.Reset,
			}
			for _, name := range order {
				handles[name]()
			}
			Expect(deleted).To(Equal(1))
			Expect(w.Lock().IsNil()).To(BeTrue())
			w.Reset()
		},
		Entry("strong then weak", []string{"p", "q", "w2"}),
		Entry("weak first", []string{"w2", "q", "p"}),
		Entry("interleaved", []string{"q", "w2", "p"}),
	)
})
