// Package projectclocks defines the ProjectClocks entities, their secondary
// indexes and a cache-aside repository per entity.
//
// Every entity is a bun model with an integer primary key assigned by the
// database. Nullable columns are pointers. Each repository embeds a
// repositorycache.CachedRepository and adds one RetrieveByX method per
// secondary index, for example:
//
//	users, err := projectclocks.NewUserRepository(bunstore.New[int, projectclocks.User](db))
//	admins, err := users.RetrieveByRole(ctx, 3)
package projectclocks
