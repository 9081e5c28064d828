package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// checkpointVersion はチェックポイント形式のバージョン（互換性チェック用）
const checkpointVersion = 1

type checkpoint struct {
	Version int
	Model   *Model
}

// Save はモデルをファイルに保存する
//
// 使用例:
//
//	m, _ := model.NewTree(t)
//	err := model.Save(m, "model.gob")
func Save(m *Model, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create checkpoint %s", filename)
	}
	if err := SaveToWriter(m, file); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrap(file.Close(), "failed to close checkpoint")
}

// Load はファイルからモデルを読み込み、検証する
func Load(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open checkpoint %s", filename)
	}
	defer file.Close()
	return LoadFromReader(file)
}

// SaveToWriter はモデルをio.Writerに保存する
func SaveToWriter(m *Model, w io.Writer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(checkpoint{Version: checkpointVersion, Model: m}); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadFromReader はio.Readerからモデルを読み込む。
// 木構造の派生情報（深さ・分岐数）は読み込み後に再計算される。
func LoadFromReader(r io.Reader) (*Model, error) {
	var cp checkpoint
	if err := gob.NewDecoder(r).Decode(&cp); err != nil {
		return nil, errors.Wrap(err, "failed to decode model")
	}
	if cp.Version != checkpointVersion {
		return nil, errors.NewModelError("model.Load", "unsupported checkpoint version", nil)
	}
	m := cp.Model
	if m == nil {
		return nil, errors.NewModelError("model.Load", "checkpoint holds no model", errors.ErrEmptyData)
	}

	switch {
	case m.Flat != nil:
		if err := m.Flat.Validate(); err != nil {
			return nil, err
		}
	case m.Tree != nil:
		if err := m.Tree.Reindex(); err != nil {
			return nil, err
		}
	case m.Ensemble != nil:
		for _, t := range m.Ensemble.Trees {
			if err := t.Reindex(); err != nil {
				return nil, err
			}
		}
		if err := m.Ensemble.Validate(); err != nil {
			return nil, err
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
