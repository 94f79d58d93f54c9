package service

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/songwish/assistant-be/types"
)

// BuildSourceContext renders grouped passages with their ordinal labels.
// "Source N" ordinals are 1-based group positions; citation extraction
// depends on them matching this rendering exactly.
func BuildSourceContext(groups []types.SourceGroup) string {
	var b strings.Builder
	for i, group := range groups {
		fmt.Fprintf(&b, "[Source %d: %s]\n", i+1, group.Source)
		b.WriteString(strings.Join(group.Contents, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}

// BuildPersonalizedPrompt assembles the grounding prompt in a fixed section
// order: identity/personalization, navigation routes, available products
// (optional), knowledge-base context, account data (optional), query. The
// composer performs no truncation; callers bound k and corpus size.
func BuildPersonalizedPrompt(context, query string, availableProducts []types.CatalogProduct, accountData string, customerInfo *types.CustomerInfo) string {
	var routeLines []string
	for _, rd := range routeDescriptions {
		routeLines = append(routeLines, fmt.Sprintf("- %s : %s", rd.route, rd.description))
	}
	routeContext := "AVAILABLE NAVIGATION ROUTES:\n" + strings.Join(routeLines, "\n") + "\n\n" +
		"NAVIGATION RULES:\n" +
		"- Use simple markdown links: [visit reMIDI 4](/products/remidi-4)\n" +
		"- Guide users to relevant products and pages\n" +
		"- Focus on helping users find and buy products\n"

	customerName := ""
	if customerInfo != nil {
		first := strings.TrimSpace(customerInfo.FirstName)
		if first != "" && first != types.NotAvailable {
			customerName = first
		}
	}
	var greeting string
	if customerName != "" {
		greeting = fmt.Sprintf(`PERSONALIZATION:
- The customer's name is %s
- Use their first name in greetings: "Hi %s!"
- Be warm and personal
`, customerName, customerName)
	} else {
		greeting = `PERSONALIZATION:
- Customer not logged in or no name
- Use friendly generic greetings
`
	}

	systemIdentity := fmt.Sprintf(`You are the SongWish AI Shopping Assistant. Help users find and buy music production products.

%s

CORE MISSION:
- Help users discover the right products for their needs
- Guide them to product pages
- Provide simple, helpful navigation
- Be personal and friendly
`, greeting)

	productsBlock := ""
	if len(availableProducts) > 0 {
		var productLines []string
		for _, p := range availableProducts {
			line := fmt.Sprintf("- %s [%s]: %s - %s",
				p.Display, p.Attributes.Category, p.Description.Summary, p.Total)
			if p.Discount != nil && p.DiscountPercent != "" {
				line += " (ON SALE: " + p.DiscountPercent + ")"
			}
			productLines = append(productLines, line)
		}
		productsBlock = "AVAILABLE PRODUCTS TO RECOMMEND:\n" + strings.Join(productLines, "\n") +
			"\n\nONLY recommend products from this list.\n"
	}

	accountHeader := ""
	if accountData != "" {
		accountHeader = "CUSTOMER ACCOUNT DATA:"
	}

	template := fmt.Sprintf(`%s

%s

%s

KNOWLEDGE BASE CONTEXT:
%s

%s
%s

CUSTOMER QUERY: %s
`, systemIdentity, routeContext, productsBlock, context, accountHeader, accountData, query)

	return strings.TrimSpace(template)
}

var citationPattern = regexp.MustCompile(`\[Source (\d+)\]`)

// ExtractCitedSources maps "[Source N]" markers in a response back to source
// names. Indices are deduplicated and sorted ascending (not by order of
// appearance); out-of-range indices are dropped silently.
func ExtractCitedSources(responseText string, sourceNames []string) []string {
	matches := citationPattern.FindAllStringSubmatch(responseText, -1)
	seen := map[int]bool{}
	var indices []int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		i := n - 1
		if i < 0 || i >= len(sourceNames) || seen[i] {
			continue
		}
		seen[i] = true
		indices = append(indices, i)
	}
	sort.Ints(indices)
	cited := make([]string, 0, len(indices))
	for _, i := range indices {
		cited = append(cited, sourceNames[i])
	}
	return cited
}
