package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrich/internal/model"
)

func TestSocialExtractor_AnchorProfiles(t *testing.T) {
	found := extractFrom(t, &SocialExtractor{}, `
		<html><body>
		<a href="https://linkedin.com/company/acme">LinkedIn</a>
		<a href="https://twitter.com/acmehq">Twitter</a>
		<a href="https://www.instagram.com/acme.shop/">Instagram</a>
		<a href="https://github.com/acme">GitHub</a>
		</body></html>`)

	require.Len(t, found.SocialProfiles, 4)
	byPlatform := map[string]model.SocialProfile{}
	for _, p := range found.SocialProfiles {
		byPlatform[p.Platform] = p
	}
	assert.Equal(t, "acme", byPlatform["linkedin"].Username)
	assert.Equal(t, "acmehq", byPlatform["twitter"].Username)
	assert.Equal(t, "acme.shop", byPlatform["instagram"].Username)
	assert.Equal(t, "acme", byPlatform["github"].Username)
}

func TestSocialExtractor_ExcludesShareLinks(t *testing.T) {
	found := extractFrom(t, &SocialExtractor{}, `
		<html><body>
		<a href="https://twitter.com/intent/tweet?url=x">Tweet this</a>
		<a href="https://www.facebook.com/sharer/sharer.php?u=x">Share</a>
		<a href="https://www.facebook.com/acmecorp">Facebook</a>
		</body></html>`)

	require.Len(t, found.SocialProfiles, 1)
	assert.Equal(t, "facebook", found.SocialProfiles[0].Platform)
	assert.Equal(t, "acmecorp", found.SocialProfiles[0].Username)
}

func TestSocialExtractor_SameAsMetadata(t *testing.T) {
	found := extractFrom(t, &SocialExtractor{}, `
		<html><head><script type="application/ld+json">
		{"@type":"Organization","name":"Acme","sameAs":["https://www.youtube.com/@acmecorp","https://t.me/acme_news"]}
		</script></head><body></body></html>`)

	require.Len(t, found.SocialProfiles, 2)
	byPlatform := map[string]string{}
	for _, p := range found.SocialProfiles {
		byPlatform[p.Platform] = p.Username
	}
	assert.Equal(t, "acmecorp", byPlatform["youtube"])
	assert.Equal(t, "acme_news", byPlatform["telegram"])
}

func TestSocialExtractor_DedupsCaseInsensitive(t *testing.T) {
	found := extractFrom(t, &SocialExtractor{}, `
		<html><body>
		<a href="https://twitter.com/AcmeHQ">header</a>
		<a href="https://x.com/acmehq">footer</a>
		</body></html>`)

	assert.Len(t, found.SocialProfiles, 1)
}

func TestSocialExtractor_SkipsReservedSlugs(t *testing.T) {
	found := extractFrom(t, &SocialExtractor{}, `
		<html><body>
		<a href="https://www.facebook.com/help">Help</a>
		<a href="https://www.facebook.com/privacy">Privacy</a>
		</body></html>`)

	assert.Empty(t, found.SocialProfiles)
}
