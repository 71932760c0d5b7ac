package sessions

import (
	"encoding/gob"
	"fmt"
	"log"
	"sync"
	"time"

	ginsessions "github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
)

func init() {
	gob.Register(Session{})
}

// ownershipTTL matches the cookie MaxAge: once the browser session has
// expired, its ownership set may be dropped too.
const ownershipTTL = 24 * time.Hour

// Session is the anonymous external identity for one area, scoped to the
// browser's HTTP session. The cookie carries only the identity; the set of
// files this session uploaded lives server-side, keyed by OwnershipKey, so
// that concurrent requests from the same browser mutate one shared set.
type Session struct {
	Token        string
	UserInfo     string
	OwnershipKey string
	LoggedInAt   time.Time

	// OwnedFileIDs is filled in by Resolve from the server-side set; it is
	// never trusted from the cookie.
	OwnedFileIDs []string
}

// Owns reports whether this session uploaded the given file.
func (s *Session) Owns(fileID string) bool {
	if s == nil {
		return false
	}
	for _, id := range s.OwnedFileIDs {
		if id == fileID {
			return true
		}
	}
	return false
}

type ownedSet struct {
	fileIDs  []string
	lastSeen time.Time
}

// Store manages anonymous sessions inside the gin HTTP session. One HTTP
// session may hold sessions for several areas, keyed by access token. The
// owned-file sets are held in process memory under one mutex, so two tabs
// uploading at the same time cannot overwrite each other's ownership.
type Store struct {
	areas areas.Store

	mu    sync.Mutex
	owned map[string]*ownedSet
}

func NewStore(areaStore areas.Store) *Store {
	s := &Store{areas: areaStore, owned: make(map[string]*ownedSet)}
	go s.expireOwnership()
	return s
}

func sessionKey(token string) string {
	return "dt-session:" + token
}

// Login verifies token and password against the area and creates or
// refreshes the anonymous session. Bad token and bad password are
// deliberately indistinguishable. The matched area is returned so callers
// do not have to look it up again.
func (s *Store) Login(c *gin.Context, token, password, userInfo string) (*Session, *models.Area, error) {
	area, err := s.areas.FindByToken(c.Request.Context(), token)
	if err != nil {
		return nil, nil, common.ErrAuth
	}
	if !areas.CheckPassword(area.ExternalPassword, password) {
		return nil, nil, common.ErrAuth
	}

	httpSession := ginsessions.Default(c)
	existing := s.Resolve(c, token)
	session := Session{
		Token:        token,
		UserInfo:     userInfo,
		OwnershipKey: uuid.NewString(),
		LoggedInAt:   time.Now(),
	}
	if existing != nil {
		session.OwnershipKey = existing.OwnershipKey
		if userInfo == "" {
			session.UserInfo = existing.UserInfo
		}
	} else {
		log.Printf("external login to area %s (%s)", area.ID, userInfo)
	}

	httpSession.Set(sessionKey(token), session)
	if err := httpSession.Save(); err != nil {
		return nil, nil, fmt.Errorf("saving session: %w", err)
	}
	session.OwnedFileIDs = s.ownedFiles(session.OwnershipKey)
	return &session, area, nil
}

// Resolve returns the session for the given token, or nil. Every external
// endpoint re-derives trust through this before touching the store.
func (s *Store) Resolve(c *gin.Context, token string) *Session {
	httpSession := ginsessions.Default(c)
	raw := httpSession.Get(sessionKey(token))
	if raw == nil {
		return nil
	}
	session, ok := raw.(Session)
	if !ok {
		return nil
	}
	session.OwnedFileIDs = s.ownedFiles(session.OwnershipKey)
	return &session
}

// RegisterOwnership appends a file id to the session's owned set. The
// mutation happens server-side under the store mutex, so uploads racing
// from two tabs of the same browser both land in the set. Idempotent.
func (s *Store) RegisterOwnership(c *gin.Context, token, fileID string) error {
	session := s.Resolve(c, token)
	if session == nil {
		return common.ErrAuth
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.owned[session.OwnershipKey]
	if set == nil {
		set = &ownedSet{}
		s.owned[session.OwnershipKey] = set
	}
	set.lastSeen = time.Now()
	for _, id := range set.fileIDs {
		if id == fileID {
			return nil
		}
	}
	set.fileIDs = append(set.fileIDs, fileID)
	return nil
}

// Logout invalidates the whole HTTP session, dropping every token it held.
// The server-side ownership sets become unreachable without the cookie and
// age out via expireOwnership.
func (s *Store) Logout(c *gin.Context) error {
	httpSession := ginsessions.Default(c)
	httpSession.Clear()
	httpSession.Options(ginsessions.Options{Path: "/", MaxAge: -1})
	return httpSession.Save()
}

func (s *Store) ownedFiles(key string) []string {
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.owned[key]
	if set == nil {
		return nil
	}
	set.lastSeen = time.Now()
	return append([]string(nil), set.fileIDs...)
}

func (s *Store) expireOwnership() {
	for {
		time.Sleep(time.Hour)
		s.mu.Lock()
		for key, set := range s.owned {
			if time.Since(set.lastSeen) > ownershipTTL {
				delete(s.owned, key)
			}
		}
		s.mu.Unlock()
	}
}
