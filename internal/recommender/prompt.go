package recommender

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

const systemPrompt = "You are an expert PC builder with deep knowledge of computer components and their compatibility. " +
	"Your task is to recommend an optimal PC build based on user requirements."

func userPrompt(req types.BuildRequirements) string {
	additional := strings.TrimSpace(req.AdditionalRequirements)
	if additional == "" {
		additional = "None"
	}

	var b strings.Builder
	b.WriteString("Generate a detailed PC build recommendation based on the following requirements:\n")
	fmt.Fprintf(&b, "- Purpose: %s\n", req.Purpose)
	fmt.Fprintf(&b, "- Budget: %s\n", req.Budget)
	fmt.Fprintf(&b, "- Performance Level: %s\n", req.Performance)
	fmt.Fprintf(&b, "- Storage Needs: %s\n", req.Storage)
	fmt.Fprintf(&b, "- Monitor Resolution: %s\n", req.Resolution)
	fmt.Fprintf(&b, "- Additional Requirements: %s\n\n", additional)
	b.WriteString("Provide a complete PC build recommendation with the following components:\n")
	b.WriteString("- CPU\n- GPU\n- Motherboard\n- RAM\n- Storage (SSD/HDD)\n- Power Supply\n- Case\n\n")
	b.WriteString("For each component, include:\n- Name\n- Brief description\n- Price (in USD)\n\n")
	b.WriteString("Also include:\n")
	b.WriteString("- A brief analysis explaining why this build is suitable for the specified purpose\n")
	b.WriteString("- Total price\n")
	b.WriteString("- Performance rating (a number from 1-5, where 5 is the highest)\n")
	b.WriteString("- Estimated power draw\n\n")
	b.WriteString(`Format the response as a JSON object with the keys "analysis", "components" `)
	b.WriteString(`(an array of objects with "type", "name", "description" and "price"), `)
	b.WriteString(`"totalPrice", "performanceRating" and "estimatedPowerDraw".`)
	return b.String()
}
