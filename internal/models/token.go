package models

import "time"

// Audience identifies the kind of client a session was issued for.
type Audience struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

var (
	AudienceWeb = Audience{Code: "web", Description: "Aplicaciones WEB"}
	AudienceApp = Audience{Code: "app", Description: "Aplicaciones APP"}
)

// AudienceFromCode returns the audience matching code, or nil.
func AudienceFromCode(code string) *Audience {
	switch code {
	case AudienceWeb.Code:
		return &AudienceWeb
	case AudienceApp.Code:
		return &AudienceApp
	default:
		return nil
	}
}

// Token is the durable record of an issued session. Its id doubles as the
// jti claim of the signed token. Tokens are deleted, never soft-deleted.
type Token struct {
	ID          int64     `bson:"_id" json:"id"`
	UserID      int64     `bson:"userId" json:"userId"`
	AccessToken string    `bson:"accessToken" json:"accessToken"`
	AppName     string    `bson:"appName" json:"appName"`
	Audience    string    `bson:"audience" json:"audience"`
	ExpiresAt   time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
