package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protoboard/pkg/observability"
	"github.com/platinummonkey/protoboard/pkg/schema"
)

func greeterDocument(id string) *schema.Document {
	greeter := schema.NewService("Greeter")
	greeter.Methods = append(greeter.Methods, schema.NewRPCMethod("SayHello", "HelloRequest", "HelloReply"))
	request := schema.NewMessage("HelloRequest").AddField(schema.NewField("name", "string", 1))
	reply := schema.NewMessage("HelloReply").AddField(schema.NewField("message", "string", 1))

	return &schema.Document{
		ID:       id,
		Name:     "greeter",
		Elements: []schema.Element{greeter, request, reply},
	}
}

func TestNew_CopiesDocument(t *testing.T) {
	doc := greeterDocument("doc")
	s := New(doc, nil)

	doc.Elements[0].(*schema.Service).Name = "Changed"

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "Greeter", snapshot[0].GetName())
	assert.Equal(t, "doc", s.ID())
	assert.Equal(t, "greeter", s.Name())
	assert.False(t, s.Dirty())
}

func TestAddElement(t *testing.T) {
	s := New(greeterDocument("doc"), nil)
	greeter := s.Snapshot()[0]

	method := &schema.RPCMethod{Name: "SayBye", InputType: "ByeRequest"}
	outcome := s.AddElement(method, greeter.GetID())

	require.Equal(t, schema.OutcomeApplied, outcome)
	assert.NotEmpty(t, method.ID)
	assert.True(t, s.Dirty())
	assert.Equal(t, uint64(1), s.Revision())

	found, ok := s.FindElement(method.ID)
	require.True(t, ok)
	assert.Equal(t, greeter.GetID(), found.GetParentID())
	assert.NotSame(t, method, found)

	// later edits to the caller's value do not reach the model
	method.Name = "Mutated"
	found, _ = s.FindElement(method.ID)
	assert.Equal(t, "SayBye", found.GetName())
}

func TestAddElement_RejectedLeavesSessionClean(t *testing.T) {
	s := New(greeterDocument("doc"), nil)
	greeter := s.Snapshot()[0]

	assert.Equal(t, schema.OutcomeShapeMismatch, s.AddElement(schema.NewMessage("Nope"), greeter.GetID()))
	assert.Equal(t, schema.OutcomeParentNotFound, s.AddElement(schema.NewEnum("Nope"), "missing"))
	assert.Equal(t, schema.OutcomeInvalidElement, s.AddElement(nil, ""))

	assert.False(t, s.Dirty())
	assert.Len(t, s.Snapshot(), 3)
}

func TestAddElement_RejectedKeepsCallerValue(t *testing.T) {
	s := New(greeterDocument("doc"), nil)
	greeter := s.Snapshot()[0]

	msg := &schema.Message{Name: "Nope", Fields: []*schema.Field{{Name: "id", Type: "string", Number: 1}}}
	require.Equal(t, schema.OutcomeShapeMismatch, s.AddElement(msg, greeter.GetID()))

	assert.Empty(t, msg.ID)
	assert.Empty(t, msg.ParentID)
	assert.Empty(t, msg.Fields[0].ID)
}

func TestRemoveElement(t *testing.T) {
	s := New(greeterDocument("doc"), nil)
	request := s.Snapshot()[1]

	assert.Equal(t, schema.OutcomeApplied, s.RemoveElement(request.GetID(), ""))
	assert.Equal(t, schema.OutcomeNotFound, s.RemoveElement(request.GetID(), ""))
	assert.Len(t, s.Snapshot(), 2)
	assert.Equal(t, uint64(1), s.Revision())
}

func TestFindElement_ReturnsCopy(t *testing.T) {
	s := New(greeterDocument("doc"), nil)
	id := s.Snapshot()[1].GetID()

	found, ok := s.FindElement(id)
	require.True(t, ok)
	found.(*schema.Message).Fields[0].Name = "changed"

	again, _ := s.FindElement(id)
	assert.Equal(t, "name", again.(*schema.Message).Fields[0].Name)

	_, ok = s.FindElement("missing")
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	s := New(greeterDocument("doc"), nil)
	greeter := s.Snapshot()[0].(*schema.Service)

	outcome, err := s.Update(greeter.ID, func(el schema.Element) error {
		svc := el.(*schema.Service)
		svc.Name = "Welcomer"
		svc.Comment = "greets"
		svc.Methods = nil
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, schema.OutcomeApplied, outcome)

	found, _ := s.FindElement(greeter.ID)
	svc := found.(*schema.Service)
	assert.Equal(t, "Welcomer", svc.Name)
	assert.Equal(t, "greets", svc.Comment)
	assert.Len(t, svc.Methods, 1, "child collections are kept")
}

func TestUpdate_ErrorDiscardsEdit(t *testing.T) {
	s := New(greeterDocument("doc"), nil)
	greeter := s.Snapshot()[0]
	boom := errors.New("boom")

	outcome, err := s.Update(greeter.GetID(), func(el schema.Element) error {
		el.(*schema.Service).Name = "Partial"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, schema.OutcomeInvalidElement, outcome)

	found, _ := s.FindElement(greeter.GetID())
	assert.Equal(t, "Greeter", found.GetName())
	assert.False(t, s.Dirty())

	outcome, err = s.Update("missing", func(schema.Element) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, schema.OutcomeNotFound, outcome)
}

func TestReplace(t *testing.T) {
	s := New(greeterDocument("doc"), nil)
	request := s.Snapshot()[1]

	replacement := &schema.Message{Name: "GreetRequest", Fields: []*schema.Field{{Name: "who", Type: "string", Number: 1}}}
	assert.Equal(t, schema.OutcomeApplied, s.Replace(request.GetID(), replacement))

	found, _ := s.FindElement(request.GetID())
	assert.Equal(t, "GreetRequest", found.GetName())
	assert.Equal(t, "who", found.(*schema.Message).Fields[0].Name)

	assert.Equal(t, schema.OutcomeShapeMismatch, s.Replace(request.GetID(), schema.NewEnum("Wrong")))
	assert.Equal(t, schema.OutcomeNotFound, s.Replace("missing", replacement))
}

func TestReset(t *testing.T) {
	s := New(greeterDocument("doc"), nil)

	s.Reset()

	assert.Empty(t, s.Snapshot())
	assert.True(t, s.Dirty())
}

func TestSetName(t *testing.T) {
	s := New(greeterDocument("doc"), nil)

	s.SetName("greeter")
	assert.False(t, s.Dirty())

	s.SetName("renamed")
	assert.True(t, s.Dirty())
	assert.Equal(t, "renamed", s.Document().Name)
}

func TestMarkSaved_KeepsLaterEditsDirty(t *testing.T) {
	s := New(greeterDocument("doc"), nil)
	s.AddElement(schema.NewEnum("First"), "")

	doc, revision := s.document()
	s.AddElement(schema.NewEnum("Second"), "")
	s.markSaved(revision, doc.UpdatedAt)
	assert.True(t, s.Dirty())

	_, revision = s.document()
	s.markSaved(revision, doc.UpdatedAt)
	assert.False(t, s.Dirty())
}

func TestConcurrentEdits(t *testing.T) {
	s := New(&schema.Document{ID: "doc"}, nil)
	outer := schema.NewMessage("Outer")
	require.Equal(t, schema.OutcomeApplied, s.AddElement(outer, ""))

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.AddElement(schema.NewEnum(fmt.Sprintf("E%d_%d", w, i)), outer.ID)
				_ = s.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	found, ok := s.FindElement(outer.ID)
	require.True(t, ok)
	assert.Len(t, found.(*schema.Message).Enums, writers*perWriter)
	assert.Equal(t, uint64(writers*perWriter+1), s.Revision())
}

func TestApply_RecordsOutcomes(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	s := New(greeterDocument("doc"), metrics)

	s.AddElement(schema.NewEnum("Color"), "")
	s.RemoveElement("missing", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ModelOperationsTotal.WithLabelValues("add", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ModelOperationsTotal.WithLabelValues("remove", "not_found")))
}
