package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/dreamspace-builders/site-backend/internal/enquiries/domain"
)

const collection = "contact-messages"

type enquiryDoc struct {
	Name      string     `firestore:"name"`
	Email     string     `firestore:"email"`
	Phone     string     `firestore:"phone"`
	Subject   string     `firestore:"subject"`
	Message   string     `firestore:"message"`
	CreatedAt *time.Time `firestore:"createdAt"`
	Read      bool       `firestore:"read"`
}

// FirestoreRepo stores enquiries in the "contact-messages" collection.
type FirestoreRepo struct {
	client *firestore.Client
}

func NewFirestoreRepo(client *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{client: client}
}

// Create stores an unread enquiry stamped with the server time.
func (r *FirestoreRepo) Create(ctx context.Context, in domain.NewEnquiry) (string, error) {
	ref, _, err := r.client.Collection(collection).Add(ctx, map[string]any{
		"name":      in.Name,
		"email":     in.Email,
		"phone":     in.Phone,
		"subject":   in.Subject,
		"message":   in.Message,
		"createdAt": firestore.ServerTimestamp,
		"read":      false,
	})
	if err != nil {
		return "", mapErr("create enquiry", err)
	}
	return ref.ID, nil
}

// List returns every enquiry, newest first, with undated documents last.
// Ordering happens in memory because a createdAt ordered query would skip
// documents that lack the field.
func (r *FirestoreRepo) List(ctx context.Context) ([]domain.Enquiry, error) {
	docs, err := r.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapErr("list enquiries", err)
	}

	out := make([]domain.Enquiry, 0, len(docs))
	for _, d := range docs {
		var doc enquiryDoc
		if err := d.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode enquiry %s: %w", d.Ref.ID, err)
		}
		out = append(out, domain.Enquiry{
			ID:        d.Ref.ID,
			Name:      doc.Name,
			Email:     doc.Email,
			Phone:     doc.Phone,
			Subject:   doc.Subject,
			Message:   doc.Message,
			CreatedAt: doc.CreatedAt,
			Read:      doc.Read,
		})
	}
	domain.SortNewestFirst(out)
	return out, nil
}

// MarkReadBatch flags the given enquiries as read inside one transaction.
// Records already read or since deleted are skipped, so repeating a call
// writes nothing. It returns the number of records updated.
func (r *FirestoreRepo) MarkReadBatch(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.client.Collection(collection).Doc(id))
	}

	var updated int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		updated = 0
		snaps, err := tx.GetAll(refs)
		if err != nil {
			return err
		}
		for _, s := range snaps {
			if !s.Exists() {
				continue
			}
			if read, _ := s.Data()["read"].(bool); read {
				continue
			}
			if err := tx.Update(s.Ref, []firestore.Update{{Path: "read", Value: true}}); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, mapErr("mark enquiries read", err)
	}
	return updated, nil
}

// Delete permanently removes one enquiry.
func (r *FirestoreRepo) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		return mapErr("delete enquiry", err)
	}
	return nil
}
