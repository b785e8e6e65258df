package compliment

// builtinPool is the default compliment set, merged with the optional
// compliments file at startup.
var builtinPool = []string{
	"Iron Discipline 🦾", "Early Bird Energy 🌞", "Distraction Slayer 🛡️", "Deep Work Dynamo ⚡",
	"Laser Precision 🛰️", "Leveling Up 📈", "Night Owl Power 🌙", "Flow Controller 🎛️",
	"Habit Climber 🧗", "Full Throttle 🏎️", "King of Study 👑", "Lord of Focus 🗡️",
	"Alpha Concentration 🦁", "Craftsman of Consistency 🛠️", "Power Grinder 🔧",
	"Queen of Study 👑", "Angel of Focus 🪽", "Graceful Grinder 🌸", "Rhythm of Discipline 💃",
	"Weaver of Consistency 🧵", "Moonlight Scholar 🌙", "Study Engine 📚", "Target Locked 🎯",
	"Focus Machine 🧠", "Productivity Ninja 🥷", "Finish Line Closer 🏁", "Streak Keeper 📆",
	"Premium Grinder 💎", "Consistency Beast 💪", "King of Focus 👑", "Study Titan 🗿",
	"Mind Sprint 🏃‍♂️", "Momentum Master 🧲", "Calm Laser 🎯", "Unbreakable Chain ⛓️",
	"No-Excuse Executor ✅", "Deadline Tamer ⏳", "Clarity Crafter ✨", "Courage of Action 🦅",
	"Relentless Rhythm 🥁", "Shadow of Distraction ☄️", "Focus Lighthouse 🗼",
	"Steady Flame 🔥", "Bold Consistency 🧱", "Quiet Thunder ⚡", "Grit Architect 🧱",
	"Habit Sculptor 🪚", "Minute Millionaire 🕰️", "Study Momentum 🚀", "Page Turner 📖",
	"First In, Last Out 🚪", "Mind Gardener 🌿", "Storm-Proof Focus ⛈️", "Zen Executioner 🧘",
	"Precision Pilot 🧭", "Depth Diver 🐬", "Quiet Conqueror 🤫", "Willpower Weaver 🪡",
	"Discipline Dancer 🎼", "Task Wrangler 🤠", "Flow Surfer 🏄", "Stamina Engine ⚙️",
	"Craft of Patience 🪵", "Focus Alchemist ⚗️", "Study Sentinel 🛡️", "Hustle Maestro 🎼",
	"Crown of Calm 👑", "Laser Archer 🏹", "Morning Star ⭐", "Evening Torch 🔥",
	"Habit Ranger 🧭", "Focus Smith 🔨", "Boundless Breath 🌬️", "Time Whisperer 🕊️",
	"Pathfinder of Progress 🧭", "Pulse of Persistence 💓", "Mind Fortress 🏰",
	"Climb of Mastery 🏔️", "Grace Under Fire 🔥", "Diamond Focus 💎", "Echo of Effort 📢",
	"Atlas of Tasks 🗺️", "Evergreen Habits 🌲", "Sailor of Flow ⛵", "Study Sculptor 🗿",
	"Momentum Rider 🐎", "Beacon of Routine 🗼", "Quiet Blaze 🔥", "Peak Consistency 🏔️",
	"Sentry of Focus 🚧", "Anchor of Habit ⚓", "Praxis Champion 🏆", "Tempo Tactician 🥁",
	"Stillness Power 🌊", "Minute Samurai 🗡️", "Craft of Depth 🪚", "Effort Composer 🎻",
	"Order Oracle 🧿", "Time Artisan 🎨", "Ritual Runner 🏃", "Focus Navigator 🧭",
	"Study Voyager 🚀", "Calm Commander 🫡", "Precision Crafter 🪛", "Discipline Smith 🔨",
	"Courageous Focus 🛡️", "Patience Pilot ✈️", "Focus Monk 🛕", "Study Bard 🎶",
	"Resolute Rhythm 🥁", "Will of Granite 🪨", "Horizon Hunter 🌅", "Craft of Momentum 🧰",
	"Serene Storm ⛈️", "Task Sculptor 🧱", "Endurance Engine 🔩", "Mind Cartographer 🗺️",
}
