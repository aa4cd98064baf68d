package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/contact-enrich/internal/model"
)

func TestAddressExtractor_StructuredData(t *testing.T) {
	found := extractFrom(t, &AddressExtractor{}, `
		<html><head><script type="application/ld+json">
		{"@context":"https://schema.org","@type":"LocalBusiness","name":"Acme",
		 "address":{"@type":"PostalAddress","streetAddress":"350 Fifth Avenue",
		 "addressLocality":"New York","addressRegion":"NY","postalCode":"10118"}}
		</script></head><body></body></html>`)

	assert.Equal(t, "350 Fifth Avenue, New York, NY, 10118", found.Address)
	assert.Equal(t, model.AddressSourceStructured, found.AddressSource)
}

func TestAddressExtractor_StructuredBeatsFooter(t *testing.T) {
	found := extractFrom(t, &AddressExtractor{}, `
		<html><head><script type="application/ld+json">
		{"@type":"Organization","address":"1 Infinite Loop, Cupertino, CA"}
		</script></head><body>
		<footer>123 Other Street, Springfield, IL 62701</footer>
		</body></html>`)

	assert.Equal(t, "1 Infinite Loop, Cupertino, CA", found.Address)
	assert.Equal(t, model.AddressSourceStructured, found.AddressSource)
}

func TestAddressExtractor_HeuristicScopedToFooter(t *testing.T) {
	found := extractFrom(t, &AddressExtractor{}, `
		<html><body>
		<article>In 1850 the family moved to 99 Fictional Road, a story we tell elsewhere.</article>
		<footer>Visit us: 500 Main Street, Springfield, IL 62701</footer>
		</body></html>`)

	assert.Contains(t, found.Address, "500 Main Street")
	assert.Equal(t, model.AddressSourceHeuristic, found.AddressSource)
}

func TestAddressExtractor_NoAddressOutsideScope(t *testing.T) {
	found := extractFrom(t, &AddressExtractor{}, `
		<html><body>
		<article>The office at 42 Elm Street burned down in the novel.</article>
		</body></html>`)

	assert.Empty(t, found.Address)
}

func TestParseStructuredData_GraphWrapper(t *testing.T) {
	found := extractFrom(t, &AddressExtractor{}, `
		<html><head><script type="application/ld+json">
		{"@graph":[{"@type":"WebSite","name":"x"},
		 {"@type":"Organization","address":"7 Rue de Rivoli, Paris"}]}
		</script></head><body></body></html>`)

	assert.Equal(t, "7 Rue de Rivoli, Paris", found.Address)
}

func TestParseStructuredData_MalformedBlockSkipped(t *testing.T) {
	found := extractFrom(t, &AddressExtractor{}, `
		<html><head>
		<script type="application/ld+json">{not json</script>
		<script type="application/ld+json">{"@type":"Organization","address":"8 Market Square, Leeds"}</script>
		</head><body></body></html>`)

	assert.Equal(t, "8 Market Square, Leeds", found.Address)
}
