package chat

import "strings"

// QuickAction is a predefined prompt shown above the chat input.
type QuickAction struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	reply string
}

var quickActions = []QuickAction{
	{
		ID: "improve_description", Label: "Improve Description", Icon: "edit-3",
		reply: "I'd be happy to help improve your product description! Please share your current description, and I'll make it more engaging and SEO-friendly. I can add compelling adjectives, highlight unique features, and include relevant keywords that customers search for.",
	},
	{
		ID: "suggest_price", Label: "Suggest Price", Icon: "dollar-sign",
		reply: "To suggest the best price, I'll need some details:\n• What type of product is it?\n• What materials are used?\n• How long does it take to make?\n• Are there similar products in the market?\n\nI'll analyze market trends and competitor pricing to give you an optimal price range.",
	},
	{
		ID: "marketing_tips", Label: "Marketing Tips", Icon: "trending-up",
		reply: "Here are some proven marketing strategies for artisans:\n\n📸 High-quality photos increase sales by 40%\n⏰ Post between 2-4 PM on weekdays for best engagement\n#️⃣ Use 5-10 relevant hashtags per post\n📝 Tell your story - customers love authentic narratives\n🤝 Engage with your community regularly\n\nWould you like me to elaborate on any of these?",
	},
	{
		ID: "translate", Label: "Translate Text", Icon: "globe",
		reply: "I can help translate your product descriptions into multiple languages! This can expand your reach to international customers. Which language would you like to translate to? I support Hindi, Bengali, Tamil, Telugu, and many more.",
	},
	{
		ID: "photo_tips", Label: "Photo Tips", Icon: "image",
		reply: "Great product photos are crucial! Here are my top tips:\n\n💡 Natural lighting works best - shoot near a window\n📐 Use the rule of thirds for composition\n🎨 Keep backgrounds simple and clean\n📱 Take multiple angles - detail shots are important\n✨ Show your product in use when possible\n\nWant specific advice for your product type?",
	},
	{
		ID: "generate_tags", Label: "Generate Tags", Icon: "hash",
		reply: "I can generate effective hashtags for your products! Please tell me:\n• What's your product?\n• What materials/techniques did you use?\n• What style or theme does it represent?\n\nI'll create a mix of popular and niche hashtags to maximize your reach.",
	},
}

const (
	quickActionFallback = "I'm here to help with that! Could you provide more details so I can give you the best assistance?"
	generalFallback     = "That's interesting! I'm designed to help artisans with product descriptions, pricing, marketing, photography, and more. How can I specifically assist you with your craft business today?"
)

// Rule names reported with every reply.
const (
	RuleQuickAction         = "quick_action"
	RuleQuickActionFallback = "quick_action_fallback"
	RulePrice               = "price"
	RulePhoto               = "photo"
	RuleDescription         = "description"
	RuleFallback            = "fallback"
)

type keywordRule struct {
	name     string
	keywords []string
	reply    string
}

// Checked in order, first match wins.
var keywordRules = []keywordRule{
	{
		name:     RulePrice,
		keywords: []string{"price", "cost"},
		reply:    "For pricing advice, consider your material costs, time invested, and market positioning. Premium handmade items typically have 3-4x markup from material costs. Would you like me to analyze specific pricing for your product?",
	},
	{
		name:     RulePhoto,
		keywords: []string{"photo", "image"},
		reply:    "Photos are so important for sales! Natural lighting, clean backgrounds, and multiple angles work best. Would you like specific photography tips for your product type?",
	},
	{
		name:     RuleDescription,
		keywords: []string{"description", "write"},
		reply:    "I can help you write compelling product descriptions! Share what you'd like to describe, and I'll help you highlight its unique features, materials, and craftsmanship story.",
	},
}

// Reply is a selected canned answer and the rule that produced it.
type Reply struct {
	Text string `json:"text"`
	Rule string `json:"rule"`
}

// QuickActions returns the quick actions in display order.
func QuickActions() []QuickAction {
	out := make([]QuickAction, len(quickActions))
	copy(out, quickActions)
	return out
}

func LookupQuickAction(id string) (QuickAction, bool) {
	for _, qa := range quickActions {
		if qa.ID == id {
			return qa, true
		}
	}
	return QuickAction{}, false
}

// Select maps input to a canned reply. Quick action ids match exactly,
// free text is matched case-insensitively against the keyword rules.
func Select(input string, isQuickAction bool) Reply {
	if isQuickAction {
		if qa, ok := LookupQuickAction(input); ok {
			return Reply{Text: qa.reply, Rule: RuleQuickAction}
		}
		return Reply{Text: quickActionFallback, Rule: RuleQuickActionFallback}
	}

	lower := strings.ToLower(input)
	for _, r := range keywordRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return Reply{Text: r.reply, Rule: r.name}
			}
		}
	}
	return Reply{Text: generalFallback, Rule: RuleFallback}
}
