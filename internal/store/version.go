package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/planforge/planforge/internal/model"
	"github.com/planforge/planforge/internal/notify"
)

// LatestVersion returns the newest version of a document, ordered by
// created with the ULID id as tie-break.
func (s *Store) LatestVersion(documentID string) (model.Version, error) {
	var v model.Version
	err := s.db.Where("document_id = ?", documentID).
		Order("created DESC, id DESC").First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Version{}, ErrVersionNotFound
	}
	return v, err
}

// Versions returns all versions of a document, newest first.
func (s *Store) Versions(documentID string) ([]model.Version, error) {
	var versions []model.Version
	err := s.db.Where("document_id = ?", documentID).
		Order("created DESC, id DESC").Find(&versions).Error
	return versions, err
}

// Version returns one version of a document.
func (s *Store) Version(documentID, versionID string) (model.Version, error) {
	var v model.Version
	err := s.db.Where("id = ? AND document_id = ?", versionID, documentID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Version{}, ErrVersionNotFound
	}
	return v, err
}

// Edit writes new content against the document's latest version and
// refreshes the document's listing fields, all in one transaction.
//
// An unlocked latest version is overwritten in place with the caller's
// delta and any lock state cleared. A locked latest version requires a
// Decision: continue clears the lock and overwrites, new-version leaves
// the locked version frozen and inserts a fresh unlocked one. Without a
// decision the edit fails with ErrDecisionRequired and writes nothing.
func (s *Store) Edit(id string, meta Meta, content, delta string, decision Decision) (model.Version, error) {
	doc, err := s.Get(id)
	if err != nil {
		return model.Version{}, err
	}

	now := s.clock()
	var out model.Version
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var latest model.Version
		err := tx.Where("document_id = ?", id).
			Order("created DESC, id DESC").First(&latest).Error
		hasLatest := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		branch := decision == DecisionNewVersion
		if hasLatest && latest.IsLocked() && !branch {
			if decision != DecisionContinue {
				return ErrDecisionRequired
			}
		}

		if !hasLatest || branch {
			out = model.Version{
				ID:         s.newID(now),
				DocumentID: id,
				Created:    now,
				Updated:    now,
				Delta:      delta,
				Content:    content,
			}
			if err := tx.Create(&out).Error; err != nil {
				return err
			}
		} else {
			latest.Content = content
			latest.Delta = delta
			latest.Locked = nil
			latest.Updated = now
			if err := tx.Save(&latest).Error; err != nil {
				return err
			}
			out = latest
		}

		cols, err := metaColumns(meta)
		if err != nil {
			return err
		}
		cols["updated"] = now
		cols["touched"] = now
		return tx.Model(&model.Document{}).Where("id = ?", id).Updates(cols).Error
	})
	if err != nil {
		return model.Version{}, err
	}

	s.publish(doc, notify.KindVersionUpdated, out.ID, delta)
	return out, nil
}

// NewVersion explicitly starts a fresh unlocked version with no delta,
// leaving the previous version as a rollback point.
func (s *Store) NewVersion(id string, meta Meta, content string) (model.Version, error) {
	return s.Edit(id, meta, content, "", DecisionNewVersion)
}

// Lock freezes a version. Later edits against it must continue or branch.
func (s *Store) Lock(documentID, versionID string) error {
	doc, err := s.Get(documentID)
	if err != nil {
		return err
	}
	ver, err := s.Version(documentID, versionID)
	if err != nil {
		return err
	}
	now := s.clock()
	if err := s.db.Model(&model.Version{}).Where("id = ?", versionID).
		UpdateColumn("locked", now).Error; err != nil {
		return err
	}
	s.publish(doc, notify.KindVersionLocked, versionID, ver.Delta)
	return nil
}

// Revert deletes every version newer than the target, making the target
// the latest again.
func (s *Store) Revert(documentID, versionID string) error {
	doc, err := s.Get(documentID)
	if err != nil {
		return err
	}
	target, err := s.Version(documentID, versionID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where(
			"document_id = ? AND (created > ? OR (created = ? AND id > ?))",
			documentID, target.Created, target.Created, target.ID,
		).Delete(&model.Version{}).Error
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Str("id", documentID).Str("version", versionID).Msg("reverted document")
	s.publish(doc, notify.KindVersionDeleted, versionID, "")
	return nil
}

// DeleteVersion removes a single version.
func (s *Store) DeleteVersion(documentID, versionID string) error {
	doc, err := s.Get(documentID)
	if err != nil {
		return err
	}
	res := s.db.Where("id = ? AND document_id = ?", versionID, documentID).
		Delete(&model.Version{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionNotFound
	}
	s.publish(doc, notify.KindVersionDeleted, versionID, "")
	return nil
}
