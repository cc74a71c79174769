package coherence

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
)

var _ = Describe("Terminal", func() {
	var (
		mockCtrl *gomock.Controller
		parent   *MockObject
		cc       *Terminal
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		parent = NewMockObject(mockCtrl)
		parent.EXPECT().Name().Return("l2").AnyTimes()

		cc = NewTerminal("l1d-0", 4, false)
		cc.SetParents(0, []mem.Object{parent}, nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	grantFromParent := func(state mem.MESIState, lat uint64) *gomock.Call {
		return parent.EXPECT().
			Access(gomock.Any()).
			DoAndReturn(func(req *mem.AccessReq) uint64 {
				req.State.Set(state)
				return req.Cycle + lat
			})
	}

	It("should fetch on a GETS miss and charge parent plus network latency", func() {
		grantFromParent(mem.Exclusive, 20)

		req := &mem.AccessReq{
			LineAddr: 0x40,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
			Cycle:    100,
		}
		skip := cc.StartAccess(req)
		Expect(skip).To(BeFalse())

		respCycle := cc.ProcessAccess(req, 0, 102)
		cc.EndAccess(req)

		Expect(respCycle).To(Equal(uint64(122)))
		Expect(req.State.Get()).To(Equal(mem.Exclusive))
		Expect(cc.states[0].Get()).To(Equal(mem.Exclusive))
		Expect(cc.mGETS.Value()).To(Equal(uint64(1)))
		Expect(cc.latFetch.Value()).To(Equal(uint64(20)))
	})

	It("should serve a GETS hit without touching the parent", func() {
		cc.states[1].Set(mem.Shared)

		req := &mem.AccessReq{
			LineAddr: 0x80,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
			Cycle:    10,
		}
		skip := cc.StartAccess(req)
		Expect(skip).To(BeFalse())

		respCycle := cc.ProcessAccess(req, 1, 12)
		cc.EndAccess(req)

		Expect(respCycle).To(Equal(uint64(12)))
		Expect(req.State.Get()).To(Equal(mem.Shared))
		Expect(cc.hGETS.Value()).To(Equal(uint64(1)))
	})

	It("should upgrade on a GETX to a shared line", func() {
		cc.states[2].Set(mem.Shared)
		grantFromParent(mem.Modified, 15)

		req := &mem.AccessReq{
			LineAddr: 0xc0,
			Type:     mem.GETX,
			State:    mem.NewState(mem.Invalid),
			Cycle:    50,
		}
		cc.StartAccess(req)
		respCycle := cc.ProcessAccess(req, 2, 50)
		cc.EndAccess(req)

		Expect(respCycle).To(Equal(uint64(65)))
		Expect(cc.states[2].Get()).To(Equal(mem.Modified))
		Expect(cc.mGETXSM.Value()).To(Equal(uint64(1)))
	})

	It("should turn a GETX on an exclusive line into a silent hit", func() {
		cc.states[0].Set(mem.Exclusive)

		req := &mem.AccessReq{
			LineAddr: 0x40,
			Type:     mem.GETX,
			State:    mem.NewState(mem.Invalid),
			Cycle:    7,
		}
		cc.StartAccess(req)
		respCycle := cc.ProcessAccess(req, 0, 9)
		cc.EndAccess(req)

		Expect(respCycle).To(Equal(uint64(9)))
		Expect(cc.states[0].Get()).To(Equal(mem.Modified))
		Expect(req.State.Get()).To(Equal(mem.Modified))
		Expect(cc.hGETX.Value()).To(Equal(uint64(1)))
	})

	It("should skip an access that raced with an invalidation", func() {
		req := &mem.AccessReq{
			LineAddr:     0x40,
			Type:         mem.PUTX,
			State:        mem.NewState(mem.Invalid),
			InitialState: mem.Modified,
			Cycle:        30,
		}

		skip := cc.StartAccess(req)
		cc.EndAccess(req)

		Expect(skip).To(BeTrue())
	})

	It("should write a dirty victim back on eviction", func() {
		cc.states[3].Set(mem.Modified)

		var put *mem.AccessReq
		parent.EXPECT().
			Access(gomock.Any()).
			DoAndReturn(func(req *mem.AccessReq) uint64 {
				put = req
				req.State.Set(mem.Invalid)
				return req.Cycle + 8
			})

		trigger := &mem.AccessReq{
			LineAddr: 0x100,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
			Cycle:    200,
		}
		cc.StartAccess(trigger)
		evCycle := cc.ProcessEviction(trigger, 0x1c0, 3, 202)
		cc.EndAccess(trigger)

		Expect(evCycle).To(Equal(uint64(210)))
		Expect(put.Type).To(Equal(mem.PUTX))
		Expect(put.LineAddr).To(Equal(uint64(0x1c0)))
		Expect(cc.states[3].Get()).To(Equal(mem.Invalid))
	})

	It("should notify the parent of clean victims", func() {
		cc.states[0].Set(mem.Shared)

		var put *mem.AccessReq
		parent.EXPECT().
			Access(gomock.Any()).
			DoAndReturn(func(req *mem.AccessReq) uint64 {
				put = req
				req.State.Set(mem.Invalid)
				return req.Cycle
			})

		trigger := &mem.AccessReq{
			LineAddr: 0x200,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
			Cycle:    40,
		}
		cc.StartAccess(trigger)
		cc.ProcessEviction(trigger, 0x240, 0, 41)
		cc.EndAccess(trigger)

		Expect(put.Type).To(Equal(mem.PUTS))
	})

	It("should let the parent catch an invalidation racing a writeback", func() {
		cc.states[0].Set(mem.Exclusive)

		raced := false
		parent.EXPECT().
			Access(gomock.Any()).
			DoAndReturn(func(req *mem.AccessReq) uint64 {
				Expect(req.Type).To(Equal(mem.PUTS))
				Expect(req.InitialState).To(Equal(mem.Exclusive))

				// The directory invalidates the victim while its
				// writeback is on the wire.
				wb := false
				cc.ProcessInv(&mem.InvReq{
					LineAddr:  0x40,
					Type:      mem.InvInvalidate,
					Writeback: &wb,
					Cycle:     req.Cycle,
				}, 0, req.Cycle)
				Expect(wb).To(BeFalse())

				raced = mem.CheckAccessRace(req)
				return req.Cycle
			})

		trigger := &mem.AccessReq{
			LineAddr: 0x200,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
			Cycle:    40,
		}
		cc.StartAccess(trigger)
		cc.ProcessEviction(trigger, 0x40, 0, 41)
		cc.EndAccess(trigger)

		Expect(raced).To(BeTrue())
		Expect(cc.states[0].Get()).To(Equal(mem.Invalid))
		Expect(cc.recvINV.Value()).To(Equal(uint64(1)))
	})

	It("should keep an empty victim slot silent", func() {
		trigger := &mem.AccessReq{
			LineAddr: 0x200,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
			Cycle:    40,
		}
		cc.StartAccess(trigger)
		evCycle := cc.ProcessEviction(trigger, 0x240, 0, 41)
		cc.EndAccess(trigger)

		Expect(evCycle).To(Equal(uint64(41)))
	})

	It("should apply an invalidation and report dirty data", func() {
		cc.states[1].Set(mem.Modified)

		wb := false
		inv := &mem.InvReq{
			LineAddr:  0x80,
			Type:      mem.InvInvalidate,
			Writeback: &wb,
			Cycle:     60,
		}
		respCycle := cc.ProcessInv(inv, 1, 65)

		Expect(respCycle).To(Equal(uint64(65)))
		Expect(wb).To(BeTrue())
		Expect(cc.states[1].Get()).To(Equal(mem.Invalid))
		Expect(cc.recvINV.Value()).To(Equal(uint64(1)))
	})

	It("should downgrade without losing the line", func() {
		cc.states[1].Set(mem.Exclusive)

		wb := false
		inv := &mem.InvReq{
			LineAddr:  0x80,
			Type:      mem.InvDowngrade,
			Writeback: &wb,
			Cycle:     60,
		}
		cc.ProcessInv(inv, 1, 65)

		Expect(wb).To(BeFalse())
		Expect(cc.states[1].Get()).To(Equal(mem.Shared))
	})

	It("should panic on an invalidation for an absent line", func() {
		wb := false
		inv := &mem.InvReq{
			LineAddr:  0x80,
			Type:      mem.InvInvalidate,
			Writeback: &wb,
		}

		Expect(func() { cc.ProcessInv(inv, 1, 0) }).To(Panic())
	})

	It("should panic on a writeback, having no children", func() {
		req := &mem.AccessReq{
			LineAddr: 0x40,
			Type:     mem.PUTX,
			State:    mem.NewState(mem.Modified),
		}

		Expect(func() { cc.ProcessAccess(req, 0, 0) }).To(Panic())
	})

	It("should panic when dropping a dirty line silently", func() {
		silent := NewTerminal("dtlb-0", 4, true)
		silent.SetParents(0, []mem.Object{parent}, nil)
		silent.states[0].Set(mem.Modified)

		trigger := &mem.AccessReq{
			LineAddr: 0x200,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
		}
		silent.StartAccess(trigger)
		defer silent.EndAccess(trigger)

		Expect(func() { silent.ProcessEviction(trigger, 0x240, 0, 0) }).To(Panic())
	})

	It("should drop clean lines silently when configured to", func() {
		silent := NewTerminal("dtlb-0", 4, true)
		silent.SetParents(0, []mem.Object{parent}, nil)
		silent.states[0].Set(mem.Shared)

		trigger := &mem.AccessReq{
			LineAddr: 0x200,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
		}
		silent.StartAccess(trigger)
		evCycle := silent.ProcessEviction(trigger, 0x240, 0, 12)
		silent.EndAccess(trigger)

		Expect(evCycle).To(Equal(uint64(12)))
		Expect(silent.states[0].Get()).To(Equal(mem.Invalid))
	})

	It("should register every counter under the level aggregate", func() {
		agg := stats.NewAggregate("l1d-0", "")
		cc.InitStats(agg)

		for _, name := range []string{
			"hGETS", "hGETX", "mGETS", "mGETXIM", "mGETXSM",
			"PUTS", "PUTX", "INV", "INVX", "latGETnl", "latGETnet",
		} {
			Expect(stats.Lookup(agg, name)).NotTo(BeNil(), name)
		}
	})
})
