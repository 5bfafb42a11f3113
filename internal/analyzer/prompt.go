package analyzer

import (
	"fmt"
	"strings"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
)

// textLimit caps each prompt segment so one long post cannot blow up
// token cost.
const textLimit = 2000

const analysisPrompt = `你是一个专业的财经分析师。请分析以下知识星球帖子及其评论内容。

帖子内容：
%s

评论内容：
%s

请分析以下要点：
1. 该内容是否涉及股票、期货、区块链等财经相关话题？（是/否）
2. 如果是财经相关：
   - 涉及的金融产品类型（股票/期货/区块链/基金/债券/其他）
   - 具体标的（如果是股票，具体哪只股票及代码；如果是期货，具体哪个品种；如果是区块链，具体哪个币种）
   - 作者及评论者的整体看法（看多/看空/中性/分歧）
   - 具体原因和逻辑分析

请以JSON格式返回：
{
    "is_financial": true/false,
    "product_type": "股票/期货/区块链/基金/其他/无",
    "targets": ["具体标的1", "具体标的2"],
    "outlook": "看多/看空/中性/分歧/无",
    "reason": "具体原因和逻辑（简要概括）",
    "summary": "一句话总结该帖子的核心观点"
}

只返回JSON，不要其他内容。如果不涉及财经话题，is_financial设为false，其他字段填"无"。`

const batchPromptHeader = `你是一个专业的财经分析师。下面是%d条编号的社区发言，请逐条找出其中提到的每一个金融标的（股票/期货/币种等），并给出发言者对该标的的情绪判断。

`

const batchPromptFooter = `
请以JSON数组格式返回，每个识别出的（发言，标的）组合一个元素：
[
    {"index": 1, "security": "标的名称或代码", "sentiment": "看多/看空/中性/分歧", "confidence": 0.8, "reason": "简要原因"}
]

index对应发言编号，confidence是0到1之间的小数。未提到任何金融标的的发言不要输出元素。只返回JSON数组，不要其他内容。`

// buildTopicPrompt renders the single-topic analysis prompt with the
// post body and the comment thread, both truncated.
func buildTopicPrompt(topic *models.Topic) string {
	var comments []string
	for _, c := range topic.Comments {
		if c.Text == "" {
			continue
		}
		comments = append(comments, fmt.Sprintf("- %s: %s", c.Author, c.Text))
	}
	commentsText := "（无评论）"
	if len(comments) > 0 {
		commentsText = strings.Join(comments, "\n")
	}

	return fmt.Sprintf(analysisPrompt, truncate(topic.Text, textLimit), truncate(commentsText, textLimit))
}

// buildBatchPrompt renders the numbered batch prompt for per-security
// sentiment extraction. Item numbering starts at 1.
func buildBatchPrompt(texts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, batchPromptHeader, len(texts))
	for i, text := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, truncate(text, textLimit))
	}
	b.WriteString(batchPromptFooter)
	return b.String()
}

// truncate caps a string at limit characters, not bytes, so multibyte
// text is never split mid-rune.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
