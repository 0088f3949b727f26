package state

import (
	"fmt"

	"mosaicchain/native/emit"
	"mosaicchain/native/publication"
)

type storedEmitStat struct {
	Symbol            string
	LastMosaicsReward uint64
	LastLeadersReward uint64
}

func (m *Manager) EmitStatGet(symbol string) (*emit.Stat, bool, error) {
	var stored storedEmitStat
	ok, err := m.KVGet(emitStatKey(symbol), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &emit.Stat{
		Symbol:            stored.Symbol,
		LastMosaicsReward: i64(stored.LastMosaicsReward),
		LastLeadersReward: i64(stored.LastLeadersReward),
	}, true, nil
}

func (m *Manager) EmitStatPut(stat *emit.Stat) error {
	if stat == nil {
		return fmt.Errorf("emit: nil stat")
	}
	return m.KVPut(emitStatKey(stat.Symbol), &storedEmitStat{
		Symbol:            stat.Symbol,
		LastMosaicsReward: u64(stat.LastMosaicsReward),
		LastLeadersReward: u64(stat.LastLeadersReward),
	})
}

func (m *Manager) PublicationVertexGet(symbol string, id uint64) (*publication.Vertex, bool, error) {
	var v publication.Vertex
	ok, err := m.KVGet(vertexKey(symbol, id), &v)
	if err != nil || !ok {
		return nil, false, err
	}
	return &v, true, nil
}

func (m *Manager) PublicationVertexPut(symbol string, v *publication.Vertex) error {
	if v == nil {
		return fmt.Errorf("publication: nil vertex")
	}
	return m.KVPut(vertexKey(symbol, v.ID), v)
}

func (m *Manager) PublicationVertexDelete(symbol string, id uint64) error {
	return m.KVDelete(vertexKey(symbol, id))
}
