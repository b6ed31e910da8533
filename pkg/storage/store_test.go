package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protoboard/pkg/schema"
)

func testDocument(id, name string) *schema.Document {
	greeter := schema.NewService("Greeter")
	greeter.Methods = append(greeter.Methods, schema.NewRPCMethod("SayHello", "HelloRequest", "HelloReply"))
	request := schema.NewMessage("HelloRequest").AddField(schema.NewField("name", "string", 1))

	return &schema.Document{
		ID:       id,
		Name:     name,
		Elements: []schema.Element{greeter, request},
	}
}

// testStoreContract exercises the behavior every backend shares
func testStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("load missing", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("save and load", func(t *testing.T) {
		doc := testDocument("greeter", "Greeter API")
		before := time.Now().UTC().Add(-time.Second)
		require.NoError(t, store.Save(ctx, doc))
		assert.True(t, doc.UpdatedAt.After(before))

		loaded, err := store.Load(ctx, "greeter")
		require.NoError(t, err)
		assert.Equal(t, "greeter", loaded.ID)
		assert.Equal(t, "Greeter API", loaded.Name)
		require.Len(t, loaded.Elements, 2)

		svc, ok := loaded.Elements[0].(*schema.Service)
		require.True(t, ok)
		assert.Equal(t, doc.Elements[0].GetID(), svc.ID)
		require.Len(t, svc.Methods, 1)
		assert.Equal(t, "HelloRequest", svc.Methods[0].InputType)
	})

	t.Run("save overwrites", func(t *testing.T) {
		doc := testDocument("greeter", "Renamed")
		doc.Elements = doc.Elements[:1]
		require.NoError(t, store.Save(ctx, doc))

		loaded, err := store.Load(ctx, "greeter")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", loaded.Name)
		assert.Len(t, loaded.Elements, 1)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, testDocument("orders", "Orders")))

		summaries, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 2)

		ids := []string{summaries[0].ID, summaries[1].ID}
		assert.ElementsMatch(t, []string{"greeter", "orders"}, ids)
		for _, sum := range summaries {
			assert.False(t, sum.UpdatedAt.IsZero())
		}
		assert.False(t, summaries[0].UpdatedAt.Before(summaries[1].UpdatedAt))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "orders"))

		_, err := store.Load(ctx, "orders")
		assert.True(t, errors.Is(err, ErrNotFound))

		err = store.Delete(ctx, "orders")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("invalid ids", func(t *testing.T) {
		err := store.Save(ctx, testDocument("../escape", "x"))
		assert.True(t, errors.Is(err, ErrInvalidID))

		_, err = store.Load(ctx, "")
		assert.True(t, errors.Is(err, ErrInvalidID))

		err = store.Delete(ctx, "a/b")
		assert.True(t, errors.Is(err, ErrInvalidID))
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, store.HealthCheck(ctx))
	})
}
