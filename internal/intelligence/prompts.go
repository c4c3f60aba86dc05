package intelligence

// assignmentSystemPrompt frames the assignment recommendation task.
const assignmentSystemPrompt = `You assist a project manager who distributes tracker work items across a team.
You receive unassigned work items, every scored work item in the project, the
number of tasks each user currently holds and the total priority score each
user already carries. Higher priority scores mean more urgent work.

Recommend exactly 3 people:
- The first two balance the load so nobody is overloaded.
- Prefer people whose current tasks match the unassigned work.
- The third holds many tasks; say that this shows they can handle critical work.

Weigh task count and total priority together so assignments are equitable.
Use only email addresses that appear in the task counts.
Each reason must mention task count, total priority and priority score.`

// riskSystemPrompt frames the risk report ranking task.
const riskSystemPrompt = `You review work items that were flagged as at risk.
Each item has a priority_score computed from its priority, severity and days
until due. Higher scores are more critical.

Select the top %d high-risk items, favouring:
- the highest priority scores,
- items close to their due date, especially in state New or In Progress,
- high scores regardless of state.

Return the items unchanged. Do not add explanations outside the schema.`

const emailBodySystemPrompt = `You write short, professional emails. Return only the email body.`

const emailSubjectSystemPrompt = `You write concise, professional email subject lines. Return only the subject line, without quotes or a "Subject:" prefix.`
