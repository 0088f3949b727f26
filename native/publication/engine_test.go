package publication

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"mosaicchain/core/events"
	"mosaicchain/native/gallery"
	"mosaicchain/native/params"
)

const sym = "GOLOS"

type mockState struct{ vertices map[uint64]Vertex }

func (m *mockState) PublicationVertexGet(_ string, id uint64) (*Vertex, bool, error) {
	v, ok := m.vertices[id]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (m *mockState) PublicationVertexPut(_ string, v *Vertex) error {
	m.vertices[v.ID] = *v
	return nil
}

func (m *mockState) PublicationVertexDelete(_ string, id uint64) error {
	delete(m.vertices, id)
	return nil
}

type claimCall struct {
	creator string
	damn    *bool
}

type fakeGallery struct {
	created []gallery.CreateMosaicParams
	added   []gallery.AddParams
	claims  []claimCall
	found   bool
	frozen  map[string]int64
}

func (g *fakeGallery) CreateMosaic(_ string, p gallery.CreateMosaicParams) error {
	g.created = append(g.created, p)
	return nil
}

func (g *fakeGallery) AddToMosaic(_ string, p gallery.AddParams) error {
	g.added = append(g.added, p)
	return nil
}

func (g *fakeGallery) ClaimGem(string, uint64, string, string, bool) error { return nil }

func (g *fakeGallery) ClaimGemsByCreator(_ string, _ uint64, creator string, _, _ bool, damn *bool) (bool, error) {
	g.claims = append(g.claims, claimCall{creator: creator, damn: damn})
	return g.found, nil
}

func (g *fakeGallery) Mosaic(_ string, id uint64) (*gallery.Mosaic, error) {
	for _, c := range g.created {
		if c.ID == id {
			return &gallery.Mosaic{ID: id, Creator: c.Creator}, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", gallery.ErrMosaicNotFound, id)
}

func (g *fakeGallery) FrozenAmount(_ string, owner string) (int64, error) {
	return g.frozen[owner], nil
}

type fakeLedger map[string]int64

func (l fakeLedger) BalanceOf(_ string, owner string) (int64, bool, error) {
	v, ok := l[owner]
	return v, ok, nil
}

type staticParams struct{ cfg *params.Community }

func (p staticParams) Community(string) (*params.Community, error) { return p.cfg, nil }

type fixture struct {
	eng     *Engine
	st      *mockState
	gallery *fakeGallery
	cfg     *params.Community
	rec     *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		st:      &mockState{vertices: make(map[uint64]Vertex)},
		gallery: &fakeGallery{frozen: make(map[string]int64)},
		cfg:     params.Defaults(sym),
		rec:     &events.Recorder{},
	}
	f.eng = NewEngine()
	f.eng.SetState(f.st)
	f.eng.SetGallery(f.gallery)
	f.eng.SetLedger(fakeLedger{"alice": 5000, "bob": 5000, "carol": 100})
	f.eng.SetParams(staticParams{cfg: f.cfg})
	f.eng.SetEmitter(f.rec)
	return f
}

var post = MessageID{Author: "alice", Permlink: "hello-world"}

func (f *fixture) publish(t *testing.T) uint64 {
	t.Helper()
	id, err := f.eng.CreateMessage(sym, CreateParams{ID: post, Header: "Hello", Body: "first post"})
	require.NoError(t, err)
	return id
}

func u16(v uint16) *uint16 { return &v }

func TestTraceryIsStable(t *testing.T) {
	require.Equal(t, post.Tracery(), MessageID{Author: "alice", Permlink: "hello-world"}.Tracery())
	require.NotEqual(t, post.Tracery(), MessageID{Author: "alice", Permlink: "hello-world-2"}.Tracery())
	require.NotEqual(t, post.Tracery(), MessageID{Author: "bob", Permlink: "hello-world"}.Tracery())
}

func TestValidatePermlink(t *testing.T) {
	long := make([]byte, MaxPermlinkLength+1)
	for i := range long {
		long[i] = 'a'
	}
	tests := []struct {
		permlink string
		ok       bool
	}{
		{"hello-world-1", true},
		{string(long[:MaxPermlinkLength]), true},
		{"", false},
		{string(long), false},
		{"Hello", false},
		{"hello_world", false},
		{"привет", false},
	}
	for _, tt := range tests {
		err := ValidatePermlink(tt.permlink)
		if tt.ok {
			require.NoError(t, err, tt.permlink)
		} else {
			require.ErrorIs(t, err, ErrInvalidPermlink, tt.permlink)
		}
	}
}

func TestAmountToFreeze(t *testing.T) {
	require.Equal(t, int64(170), GemsPerPeriod(params.Defaults(sym)))

	tests := []struct {
		name                  string
		balance, frozen, gems int64
		weight                *uint16
		want                  int64
	}{
		{name: "spread over period", balance: 5000, gems: 170, want: 29},
		{name: "capped by available", balance: 5000, frozen: 4990, gems: 170, want: 10},
		{name: "small balance stakes everything", balance: 100, gems: 170, want: 100},
		{name: "weighted", balance: 5000, gems: 170, weight: u16(5000), want: 2500},
		{name: "weighted capped", balance: 5000, frozen: 4000, gems: 170, weight: u16(5000), want: 1000},
		{name: "all frozen", balance: 5000, frozen: 5000, gems: 170, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmountToFreeze(tt.balance, tt.frozen, tt.gems, tt.weight)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	id := f.publish(t)
	require.Equal(t, post.Tracery(), id)

	require.Len(t, f.gallery.created, 1)
	c := f.gallery.created[0]
	require.Equal(t, id, c.ID)
	require.Equal(t, "alice", c.Creator)
	require.Equal(t, PostOpus, c.Opus)
	require.Equal(t, "alice/hello-world", c.ContentKey)
	require.Equal(t, int64(29), c.Quantity)
	require.Equal(t, f.cfg.AuthorPercent, c.Royalty)

	v, err := f.eng.Message(sym, post)
	require.NoError(t, err)
	require.True(t, v.IsRoot())
	require.Len(t, f.rec.Filter(EventTypeMessage), 1)

	_, err = f.eng.CreateMessage(sym, CreateParams{ID: post, Body: "again"})
	require.ErrorIs(t, err, ErrMessageExists)
}

func TestCreateNormalizesHeader(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.CreateMessage(sym, CreateParams{ID: post, Header: "Cafe\u0301", Body: "x"})
	require.NoError(t, err)
	evts := f.rec.Filter(EventTypeMessage)
	require.Len(t, evts, 1)
	require.Equal(t, "Caf\u00e9", evts[0].Attributes["header"])
}

func TestCreateRespectsOpusMinimum(t *testing.T) {
	f := newFixture(t)
	f.cfg.Opuses[0].MinMosaicInclusion = 100
	f.publish(t)
	require.Equal(t, int64(100), f.gallery.created[0].Quantity)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.CreateMessage(sym, CreateParams{ID: MessageID{Author: "alice", Permlink: "Bad"}, Body: "x"})
	require.ErrorIs(t, err, ErrInvalidPermlink)
	_, err = f.eng.CreateMessage(sym, CreateParams{ID: post})
	require.ErrorIs(t, err, ErrEmptyBody)
	_, err = f.eng.CreateMessage(sym, CreateParams{ID: post, Body: "x", Weight: u16(0)})
	require.ErrorIs(t, err, ErrInvalidWeight)
	_, err = f.eng.CreateMessage(sym, CreateParams{ID: post, Body: "x", Header: string(make([]byte, 300))})
	require.ErrorIs(t, err, ErrHeaderTooLong)
	_, err = f.eng.CreateMessage(sym, CreateParams{ID: MessageID{Permlink: "p"}, Body: "x"})
	require.ErrorIs(t, err, ErrInvalidAccount)
}

func TestReplies(t *testing.T) {
	f := newFixture(t)
	parentID := f.publish(t)
	reply := MessageID{Author: "bob", Permlink: "re-hello"}

	_, err := f.eng.CreateMessage(sym, CreateParams{ID: reply, Parent: &post, Body: "hi", Weight: u16(100)})
	require.ErrorIs(t, err, ErrInvalidWeight)
	_, err = f.eng.CreateMessage(sym, CreateParams{ID: reply, Parent: &MessageID{Author: "x", Permlink: "y"}, Body: "hi"})
	require.ErrorIs(t, err, ErrParentNotFound)

	id, err := f.eng.CreateMessage(sym, CreateParams{
		ID: reply, Parent: &post, Body: "hi",
		Providers: []gallery.Provider{{Account: "carol", Amount: 10}},
	})
	require.NoError(t, err)
	c := f.gallery.created[1]
	require.Equal(t, CommentOpus, c.Opus)
	require.Zero(t, c.Quantity)
	require.Nil(t, c.Providers)

	child, err := f.eng.Message(sym, reply)
	require.NoError(t, err)
	require.Equal(t, uint16(1), child.Level)
	require.Equal(t, parentID, child.ParentID)
	parent, err := f.eng.Message(sym, post)
	require.NoError(t, err)
	require.Equal(t, uint32(1), parent.ChildCount)

	// The root keeps its vertex while replies hang off it.
	require.NoError(t, f.eng.OnMosaicDestroyed(sym, &gallery.Mosaic{ID: parentID}))
	_, err = f.eng.Message(sym, post)
	require.NoError(t, err)

	require.NoError(t, f.eng.OnMosaicDestroyed(sym, &gallery.Mosaic{ID: id}))
	_, err = f.eng.Message(sym, reply)
	require.ErrorIs(t, err, ErrMessageNotFound)
	parent, err = f.eng.Message(sym, post)
	require.NoError(t, err)
	require.Zero(t, parent.ChildCount)
}

func TestReplyDepthLimit(t *testing.T) {
	f := newFixture(t)
	f.publish(t)
	v := f.st.vertices[post.Tracery()]
	v.Level = MaxCommentDepth
	f.st.vertices[v.ID] = v

	_, err := f.eng.CreateMessage(sym, CreateParams{ID: MessageID{Author: "bob", Permlink: "deep"}, Parent: &post, Body: "x"})
	require.ErrorIs(t, err, ErrTooDeep)
}

func TestVotes(t *testing.T) {
	f := newFixture(t)
	id := f.publish(t)

	require.ErrorIs(t, f.eng.Upvote(sym, "alice", post, nil, nil), ErrSelfVote)
	require.NoError(t, f.eng.Upvote(sym, "bob", post, u16(0), nil))
	require.Empty(t, f.gallery.added)
	require.ErrorIs(t, f.eng.Upvote(sym, "bob", MessageID{Author: "x", Permlink: "y"}, nil, nil), ErrMessageNotFound)

	require.NoError(t, f.eng.Upvote(sym, "bob", post, nil, nil))
	require.Len(t, f.gallery.added, 1)
	add := f.gallery.added[0]
	require.Equal(t, id, add.MosaicID)
	require.Equal(t, int64(29), add.Quantity)
	require.False(t, add.Damn)
	require.Equal(t, "bob", f.gallery.claims[0].creator)
	require.True(t, *f.gallery.claims[0].damn)

	require.NoError(t, f.eng.Downvote(sym, "bob", post, u16(1000), nil))
	add = f.gallery.added[1]
	require.True(t, add.Damn)
	require.Equal(t, int64(500), add.Quantity)
	require.False(t, *f.gallery.claims[1].damn)
	require.Len(t, f.rec.Filter(EventTypeVote), 2)

	f.gallery.frozen["carol"] = 100
	require.ErrorIs(t, f.eng.Upvote(sym, "carol", post, nil, nil), ErrNothingToStake)
}

func TestUnvote(t *testing.T) {
	f := newFixture(t)
	f.publish(t)

	require.ErrorIs(t, f.eng.Unvote(sym, "alice", post), ErrSelfVote)
	require.ErrorIs(t, f.eng.Unvote(sym, "bob", post), ErrVoteNotFound)

	f.gallery.found = true
	require.NoError(t, f.eng.Unvote(sym, "bob", post))
	require.Nil(t, f.gallery.claims[len(f.gallery.claims)-1].damn)
}
