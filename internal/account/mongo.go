package account

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database. Uniqueness of emails and
// provider uids is enforced by the unique indexes created at startup; a lost
// insert race surfaces as ErrConflict.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) users() *mongo.Collection { return s.db.Collection("users") }

func (s *MongoStore) FindByProviderUID(ctx context.Context, provider Provider, uid string) (*User, error) {
	var field string
	switch provider {
	case ProviderGithub:
		field = "githubUid"
	case ProviderLinkedin:
		field = "linkedinUid"
	default:
		// only login providers key users
		return nil, nil
	}
	var u User
	if err := s.users().FindOne(ctx, bson.M{field: uid}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u *User) (*User, error) {
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = xid.New().String()
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.users().InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert user: %w", ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := s.users().ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", ErrConflict)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user together with its sub-accounts, their owned
// resources and the preference record.
func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	if gh, err := s.GithubAccountByUser(ctx, id); err != nil {
		return err
	} else if gh != nil {
		for _, col := range []string{"repos", "organizations"} {
			if _, err := s.db.Collection(col).DeleteMany(ctx, bson.M{"accountId": gh.ID}); err != nil {
				return fmt.Errorf("cascade %s: %w", col, err)
			}
		}
	}
	if li, err := s.LinkedinByUser(ctx, id); err != nil {
		return err
	} else if li != nil {
		for _, col := range []string{"positions", "educations"} {
			if _, err := s.db.Collection(col).DeleteMany(ctx, bson.M{"accountId": li.ID}); err != nil {
				return fmt.Errorf("cascade %s: %w", col, err)
			}
		}
	}
	for _, col := range []string{"github_accounts", "linkedins", "stackexchanges", "preferences"} {
		if _, err := s.db.Collection(col).DeleteMany(ctx, bson.M{"userId": id}); err != nil {
			return fmt.Errorf("cascade %s: %w", col, err)
		}
	}
	res, err := s.users().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SetProfileImage(ctx context.Context, userID, objectKey string) error {
	return s.setUserField(ctx, userID, "profileImage", objectKey)
}

func (s *MongoStore) SetStackexchangeSynced(ctx context.Context, userID string, synced bool) error {
	return s.setUserField(ctx, userID, "stackexchangeSynced", synced)
}

func (s *MongoStore) setUserField(ctx context.Context, userID, field string, value interface{}) error {
	upd := bson.M{"$set": bson.M{field: value, "updatedAt": time.Now().UTC()}}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, upd)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GithubAccountByUser(ctx context.Context, userID string) (*GithubAccount, error) {
	return getByUser[GithubAccount](ctx, s.db.Collection("github_accounts"), userID)
}

func (s *MongoStore) SaveGithubAccount(ctx context.Context, a *GithubAccount) (*GithubAccount, error) {
	return saveByUser(ctx, s.db.Collection("github_accounts"), a.UserID, a)
}

func (s *MongoStore) LinkedinByUser(ctx context.Context, userID string) (*Linkedin, error) {
	return getByUser[Linkedin](ctx, s.db.Collection("linkedins"), userID)
}

func (s *MongoStore) SaveLinkedin(ctx context.Context, l *Linkedin) (*Linkedin, error) {
	return saveByUser(ctx, s.db.Collection("linkedins"), l.UserID, l)
}

func (s *MongoStore) StackexchangeByUser(ctx context.Context, userID string) (*Stackexchange, error) {
	return getByUser[Stackexchange](ctx, s.db.Collection("stackexchanges"), userID)
}

func (s *MongoStore) SaveStackexchange(ctx context.Context, se *Stackexchange) (*Stackexchange, error) {
	return saveByUser(ctx, s.db.Collection("stackexchanges"), se.UserID, se)
}

func (s *MongoStore) DeleteStackexchange(ctx context.Context, userID string) error {
	_, err := s.db.Collection("stackexchanges").DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

func (s *MongoStore) SyncRepos(ctx context.Context, accountID string, repos []Repo) error {
	return syncOwned(ctx, s.db.Collection("repos"), accountID, repos, func(r Repo) string { return r.ExternalKey })
}

func (s *MongoStore) SyncOrganizations(ctx context.Context, accountID string, orgs []Organization) error {
	return syncOwned(ctx, s.db.Collection("organizations"), accountID, orgs, func(o Organization) string { return o.ExternalKey })
}

func (s *MongoStore) SyncPositions(ctx context.Context, accountID string, positions []Position) error {
	return syncOwned(ctx, s.db.Collection("positions"), accountID, positions, func(p Position) string { return p.ExternalKey })
}

func (s *MongoStore) SyncEducations(ctx context.Context, accountID string, educations []Education) error {
	return syncOwned(ctx, s.db.Collection("educations"), accountID, educations, func(e Education) string { return e.ExternalKey })
}

func (s *MongoStore) ReposByAccount(ctx context.Context, accountID string) ([]Repo, error) {
	return listByAccount[Repo](ctx, s.db.Collection("repos"), accountID)
}

func (s *MongoStore) OrganizationsByAccount(ctx context.Context, accountID string) ([]Organization, error) {
	return listByAccount[Organization](ctx, s.db.Collection("organizations"), accountID)
}

func (s *MongoStore) PositionsByAccount(ctx context.Context, accountID string) ([]Position, error) {
	return listByAccount[Position](ctx, s.db.Collection("positions"), accountID)
}

func (s *MongoStore) EducationsByAccount(ctx context.Context, accountID string) ([]Education, error) {
	return listByAccount[Education](ctx, s.db.Collection("educations"), accountID)
}

func getByUser[T any](ctx context.Context, col *mongo.Collection, userID string) (*T, error) {
	var v T
	if err := col.FindOne(ctx, bson.M{"userId": userID}).Decode(&v); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// saveByUser upserts a sub-account by its owning user, so a sub-account is
// never created twice per user per provider.
func saveByUser[T any](ctx context.Context, col *mongo.Collection, userID string, v *T) (*T, error) {
	doc, err := toSetDoc(v)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	doc["updatedAt"] = now
	upd := bson.M{
		"$set":         doc,
		"$setOnInsert": bson.M{"_id": xid.New().String(), "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved T
	if err := col.FindOneAndUpdate(ctx, bson.M{"userId": userID}, upd, opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("save sub-account: %w", err)
	}
	return &saved, nil
}

// syncOwned upserts every fetched record by (accountId, externalKey) and then
// prunes records whose external key is no longer present upstream. Re-running
// with identical input converges to the same stored set.
func syncOwned[T any](ctx context.Context, col *mongo.Collection, accountID string, items []T, key func(T) string) error {
	now := time.Now().UTC()
	keys := make([]string, 0, len(items))
	writes := make([]mongo.WriteModel, 0, len(items))
	for _, it := range items {
		k := key(it)
		doc, err := toSetDoc(&it)
		if err != nil {
			return err
		}
		doc["accountId"] = accountID
		doc["externalKey"] = k
		doc["updatedAt"] = now
		filter := bson.M{"accountId": accountID, "externalKey": k}
		upd := bson.M{
			"$set":         doc,
			"$setOnInsert": bson.M{"_id": xid.New().String(), "createdAt": now},
		}
		writes = append(writes, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(upd).SetUpsert(true))
		keys = append(keys, k)
	}
	if len(writes) > 0 {
		if _, err := col.BulkWrite(ctx, writes); err != nil {
			return fmt.Errorf("sync upsert: %w", err)
		}
	}
	prune := bson.M{"accountId": accountID}
	if len(keys) > 0 {
		prune["externalKey"] = bson.M{"$nin": keys}
	}
	if _, err := col.DeleteMany(ctx, prune); err != nil {
		return fmt.Errorf("sync prune: %w", err)
	}
	return nil
}

func listByAccount[T any](ctx context.Context, col *mongo.Collection, accountID string) ([]T, error) {
	cur, err := col.Find(ctx, bson.M{"accountId": accountID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []T{}
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

// toSetDoc converts a model into a $set document, dropping the fields owned
// by the insert path (_id, createdAt).
func toSetDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "_id")
	delete(doc, "createdAt")
	return doc, nil
}
