package entity

import (
	"crypto/md5"
	"fmt"
)

type License struct {
	Id         string `json:"id"`
	Collection string `json:"collection"`
	TokenId    uint64 `json:"tokenId"`
	Licensee   string `json:"licensee"`
	TermStart  int64  `json:"termStart"`
	TermEnd    int64  `json:"termEnd"`
}

func (l License) Slug() string {
	return CreateLicenseSlug(l.Id)
}

func CreateLicenseSlug(id string) string {
	data := []byte(fmt.Sprintf("license-%s", id))
	return fmt.Sprintf("%x", md5.Sum(data))
}

// ActiveAt reports whether the license term covers the given time.
func (l License) ActiveAt(now int64) bool {
	return l.TermStart <= now && now <= l.TermEnd
}
