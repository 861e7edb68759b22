package chain

// ABI fragments for the deployed contracts, limited to the methods this
// service calls.

const poolABI = `[
	{"inputs":[{"name":"amount","type":"uint256"}],"name":"giveKindness","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[],"name":"enterReceiverPool","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"leaveReceiverPool","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"amount","type":"uint256"}],"name":"withdrawContribution","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"dailyPool","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getReceiverCount","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getUnclaimedFunds","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"isWithinDistributionWindow","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"hasDistributedToday","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"user","type":"address"}],"name":"getUserDailyStats","outputs":[{"name":"contributionAmount","type":"uint256"},{"name":"receiverEntries","type":"uint256"},{"name":"receiverExits","type":"uint256"},{"name":"lastResetDay","type":"uint256"},{"name":"canContribute","type":"bool"},{"name":"canEnterReceiverPool","type":"bool"},{"name":"canLeaveReceiverPool","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"user","type":"address"}],"name":"getRemainingDailyContribution","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"user","type":"address"}],"name":"getWithdrawableAmount","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"MIN_KINDNESS_AMOUNT","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"MAX_KINDNESS_AMOUNT","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"MAX_DAILY_CONTRIBUTION","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"MAX_RECEIVERS","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"ACTION_COOLDOWN","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"RECEIVER_POOL_COOLDOWN","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const registryABI = `[
	{"inputs":[{"name":"name","type":"string"}],"name":"setName","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"user","type":"address"}],"name":"isInReceiverPool","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"user","type":"address"}],"name":"getUserStats","outputs":[{"components":[{"name":"totalGiven","type":"uint256"},{"name":"totalReceived","type":"uint256"},{"name":"timesReceived","type":"uint256"},{"name":"lastActionTime","type":"uint256"},{"name":"name","type":"string"},{"name":"isInReceiverPool","type":"bool"}],"name":"","type":"tuple"}],"stateMutability":"view","type":"function"}
]`
