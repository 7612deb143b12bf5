package storage

import (
	"crypto/rand"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/crypto/schnorr"
	"github.com/vocdoni/zkledger/ledger"
	"github.com/vocdoni/zkledger/params"
	"go.vocdoni.io/dvote/db/metadb"
	"golang.org/x/sync/errgroup"
)

func TestParameters(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	_, err := stg.Parameters()
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	p, err := params.FromSeed([]byte("storage test"))
	c.Assert(err, qt.IsNil)
	c.Assert(stg.SetParameters(p), qt.IsNil)

	loaded, err := stg.Parameters()
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.LeafHash.Cmp(p.LeafHash), qt.Equals, 0)
	c.Assert(loaded.TwoToOneHash.Cmp(p.TwoToOneHash), qt.Equals, 0)
	c.Assert(loaded.Generator.Equal(p.Generator), qt.IsTrue)
}

func TestSnapshot(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	p, err := params.Setup(rand.Reader)
	c.Assert(err, qt.IsNil)
	accounts := make([]*ledger.Account, 3)
	for i := range accounts {
		pk, _, err := schnorr.KeyGen(p, rand.Reader)
		c.Assert(err, qt.IsNil)
		accounts[i] = &ledger.Account{PublicKey: pk, Balance: uint64(i * 50), Nonce: uint64(i)}
	}
	snap, err := ledger.NewSnapshot(p, 3, accounts)
	c.Assert(err, qt.IsNil)

	_, err = stg.Snapshot(p, snap.Root())
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	c.Assert(stg.SetSnapshot(snap), qt.IsNil)
	loaded, err := stg.Snapshot(p, snap.Root())
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.Root(), qt.Equals, snap.Root())
	c.Assert(loaded.Len(), qt.Equals, 3)
	for i, a := range loaded.Accounts() {
		c.Assert(a.Marshal(), qt.DeepEquals, accounts[i].Marshal())
	}

	roots, err := stg.ListSnapshots()
	c.Assert(err, qt.IsNil)
	c.Assert(roots, qt.DeepEquals, []hash.Digest{snap.Root()})

	// the same accounts under other parameters do not rebuild the root
	other, err := params.Setup(rand.Reader)
	c.Assert(err, qt.IsNil)
	_, err = stg.Snapshot(other, snap.Root())
	c.Assert(err, qt.IsNotNil)
}

func TestProofs(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	rootA, err := hash.DigestFromBigInt(big.NewInt(1))
	c.Assert(err, qt.IsNil)
	rootB, err := hash.DigestFromBigInt(big.NewInt(2))
	c.Assert(err, qt.IsNil)

	_, err = stg.PushProof(rootA, nil)
	c.Assert(err, qt.IsNotNil)

	id1, err := stg.PushProof(rootA, []byte{1, 2, 3})
	c.Assert(err, qt.IsNil)
	id2, err := stg.PushProof(rootA, []byte{4, 5, 6})
	c.Assert(err, qt.IsNil)
	id3, err := stg.PushProof(rootB, []byte{7, 8, 9})
	c.Assert(err, qt.IsNil)
	c.Assert(id1, qt.Not(qt.Equals), id2)

	rec, err := stg.Proof(id3)
	c.Assert(err, qt.IsNil)
	c.Assert(rec.ID, qt.Equals, id3)
	c.Assert([]byte(rec.Proof), qt.DeepEquals, []byte{7, 8, 9})
	c.Assert([]byte(rec.Root), qt.DeepEquals, rootB.Bytes())

	recs, err := stg.ProofsByRoot(rootA)
	c.Assert(err, qt.IsNil)
	c.Assert(recs, qt.HasLen, 2)

	c.Assert(stg.DeleteProof(id3), qt.IsNil)
	_, err = stg.Proof(id3)
	c.Assert(IsNotFound(err), qt.IsTrue)
	_, err = stg.ProofsByRoot(rootB)
	c.Assert(err, qt.ErrorIs, ErrNotFound)
	c.Assert(stg.DeleteProof(uuid.New()), qt.ErrorIs, ErrNotFound)
}

func TestKeys(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	_, err := stg.Keys()
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	rec := &KeysRecord{
		Depth:            20,
		ConstraintSystem: []byte{1},
		ProvingKey:       []byte{2},
		VerifyingKey:     []byte{3},
	}
	c.Assert(stg.SetKeys(rec), qt.IsNil)
	loaded, err := stg.Keys()
	c.Assert(err, qt.IsNil)
	c.Assert(loaded, qt.DeepEquals, rec)
}

func TestRecordEncoding(t *testing.T) {
	c := qt.New(t)
	rec := &KeysRecord{Depth: 3, VerifyingKey: []byte{0xaa}}
	a, err := encodeArtifact(rec)
	c.Assert(err, qt.IsNil)
	b, err := encodeArtifact(rec)
	c.Assert(err, qt.IsNil)
	c.Assert(a, qt.DeepEquals, b)

	var decoded KeysRecord
	c.Assert(decodeArtifact(a, &decoded), qt.IsNil)
	c.Assert(&decoded, qt.DeepEquals, rec)

	// {1: 3, 1: 4}
	c.Assert(decodeArtifact([]byte{0xa2, 0x01, 0x03, 0x01, 0x04}, &decoded), qt.IsNotNil)
	// {9: 1}, no such field
	c.Assert(decodeArtifact([]byte{0xa1, 0x09, 0x01}, &decoded), qt.IsNotNil)
}

func TestConcurrentAccess(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))
	root, err := hash.DigestFromBigInt(big.NewInt(7))
	c.Assert(err, qt.IsNil)

	const writers = 8
	var g errgroup.Group
	for i := range writers {
		g.Go(func() error {
			id, err := stg.PushProof(root, []byte{byte(i + 1)})
			if err != nil {
				return err
			}
			if _, err := stg.Proof(id); err != nil {
				return err
			}
			_, err = stg.ProofsByRoot(root)
			return err
		})
	}
	c.Assert(g.Wait(), qt.IsNil)

	recs, err := stg.ProofsByRoot(root)
	c.Assert(err, qt.IsNil)
	c.Assert(recs, qt.HasLen, writers)
}
