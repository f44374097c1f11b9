package profile

var strengthTraits = map[byte][]string{
	'R': {"Independent and Reliable", "Practical and Physically Adept", "Straightforward and Persistent"},
	'I': {"Curious and Analytical", "Logical and Observant", "Introspective", "Critical thinker"},
	'A': {"Imaginative and Expressive", "Intuitive and Original", "Emotional and Open-minded", "Open-minded"},
	'S': {"Empathetic and Friendly", "Nurturing and Patient", "Supportive and Cooperative"},
	'E': {"Charismatic and Ambitious", "Optimistic and Energetic", "Assertive and Goal-oriented"},
	'C': {"Organized and Methodical", "Detail-oriented and Conscientious", "Disciplined"},
}

var likeTraits = map[byte][]string{
	'R': {"Working with tools, machines, or materials", "Building or fixing things", "Outdoor activities", "Tasks with clear, tangible outcomes"},
	'I': {"Researching", "Experimenting", "Analyzing data", "Solving complex problems", "Learning new concepts"},
	'A': {"Creating art, writing, music, or designs", "Experimenting with aesthetics", "Expressing individuality"},
	'S': {"Helping, teaching, or counseling others", "Collaborating in teams", "Building relationships", "Making a positive impact"},
	'E': {"Leading teams", "Persuading others", "Negotiating", "Starting businesses", "Taking risks"},
	'C': {"Managing data", "Creating schedules", "Maintaining records", "Following clear procedures", "Structured environments"},
}

var dislikeTraits = map[byte][]string{
	'R': {"Abstract theorizing", "Ambiguous tasks", "Highly social or desk-bound work"},
	'I': {"Routine tasks", "Overly social environments", "Lack of intellectual challenge"},
	'A': {"Rigid structures", "Repetitive tasks", "Conforming to strict rules"},
	'S': {"Isolated work", "Competitive environments", "Tasks without human connection"},
	'E': {"Lack of control", "Mundane tasks", "Environments without opportunities for advancement"},
	'C': {"Chaos", "Ambiguity", "Highly creative or unpredictable tasks"},
}

var workPreferences = map[string][]string{
	"A": {
		"Challenging Tasks and Clear Measurable Goals",
		"Opportunities for Advancement and Regular Performance Feedback",
		"Culture Rewarding Excellence",
	},
	"R": {
		"Collaborative Team-Oriented Settings and Supportive Inclusive Culture",
		"Trust and Mutual Respect and Frequent Colleague Interaction",
	},
	"I": {
		"Autonomous and Flexible Roles and Minimal Supervision",
		"Independent Decision-Making and Creative Approaches to Tasks",
	},
	"Rc": {
		"Public Acknowledgment of Contributions and Clear Promotion Pathways",
		"Recognition through Awards and Career Advancement Opportunities",
	},
	"W": {
		"Safe Well-Equipped Workplace and Fair Compensation",
		"Reasonable Hours and Job Security",
		"Work-Life Balance",
	},
	"S": {
		"Supportive Leadership and Clear Guidance",
		"Mentorship Opportunities and Accessible Resources",
		"Encouraging Atmosphere",
	},
}
