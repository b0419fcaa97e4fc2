package usecase

import "context"

// ProfileCache holds rendered profiles for GetUser. Implementations swallow
// their own failures; a miss only costs a store read.
//
// Every Delete advances the key's version. A reader takes Version before it
// reads the stores and fills with SetAt, which drops the write when a Delete
// happened in between, so a slow fill never resurrects a replaced profile.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*UserProfile, bool)
	// Version reports the current version of userID; ok is false when the
	// cache cannot tell, and the caller should not fill.
	Version(ctx context.Context, userID string) (version int64, ok bool)
	SetAt(ctx context.Context, userID string, version int64, profile *UserProfile)
	Delete(ctx context.Context, userID string)
}

type noopProfileCache struct{}

func (noopProfileCache) Get(context.Context, string) (*UserProfile, bool)   { return nil, false }
func (noopProfileCache) Version(context.Context, string) (int64, bool)      { return 0, false }
func (noopProfileCache) SetAt(context.Context, string, int64, *UserProfile) {}
func (noopProfileCache) Delete(context.Context, string)                     {}
