package sink

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/lorekeeper/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saved struct {
	contentType string
	id          string
	data        []byte
	tags        []string
}

type recordingSink struct {
	saves   []saved
	failing string
}

func (r *recordingSink) Save(_ context.Context, contentType, id string, data []byte, tags []string) error {
	if id == r.failing {
		return errors.New("disk full")
	}
	r.saves = append(r.saves, saved{contentType, id, data, tags})
	return nil
}

func TestImport(t *testing.T) {
	s := &recordingSink{}
	entries := []core.Entry{
		core.NewEntry("Aria", "Aria", "A knight."),
		{Content: "nameless", Priority: 5},
		core.NewEntry("Aria", "Aria,elder", "Her grandmother."),
		core.NewEntry("Aria", "Aria,child", "Her daughter."),
	}

	n, err := Import(context.Background(), s, entries, "lore/saga.md", []string{" saga ", "extracted", ""})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	var ids []string
	for _, sv := range s.saves {
		ids = append(ids, sv.id)
		assert.Equal(t, EntryType, sv.contentType)
		assert.Equal(t, []string{"extracted", "saga"}, sv.tags)
	}
	assert.Equal(t, []string{"Aria", "wi_saga_1", "Aria_2", "Aria_3"}, ids)

	entry, err := DecodeEntry(s.saves[0].data)
	require.NoError(t, err)
	assert.Equal(t, entries[0], entry)
}

func TestImport_SaveError(t *testing.T) {
	s := &recordingSink{failing: "Bren"}
	entries := []core.Entry{
		core.NewEntry("Aria", "Aria", "A knight."),
		core.NewEntry("Bren", "Bren", "A smith."),
	}

	n, err := Import(context.Background(), s, entries, "saga.md", nil)
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestEntryID(t *testing.T) {
	assert.Equal(t, "Aria", EntryID(core.Entry{Name: " Aria "}, "saga", 0))
	assert.Equal(t, "wi_saga_7", EntryID(core.Entry{}, "saga", 7))

	id := EntryID(core.Entry{}, "", 0)
	assert.True(t, strings.HasPrefix(id, "wi_"))
	assert.Len(t, id, len("wi_")+36)
}

func TestDecodeEntry_Invalid(t *testing.T) {
	_, err := DecodeEntry([]byte("{"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestRecordValidate(t *testing.T) {
	assert.NoError(t, (&Record{Type: "t", ID: "i"}).Validate())
	assert.ErrorIs(t, (&Record{ID: "i"}).Validate(), ErrInvalidRecord)
	assert.ErrorIs(t, (&Record{Type: "t"}).Validate(), ErrInvalidRecord)
}
